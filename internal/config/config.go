package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Env is the environment variable for environment name (local, staging, production).
	Env = "ENV"

	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// BackendBaseURLEnv is the environment variable for the external product API base URL.
	BackendBaseURLEnv = "BACKEND_BASE_URL"

	// BackendReadTimeoutEnv is the environment variable for the outbound read timeout in seconds.
	BackendReadTimeoutEnv = "BACKEND_READ_TIMEOUT"

	// BackendWriteTimeoutEnv is the environment variable for the outbound write timeout in seconds.
	BackendWriteTimeoutEnv = "BACKEND_WRITE_TIMEOUT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// LocalEnv is the environment name for local development.
	LocalEnv = "local"

	// DefaultLocalBackendURL is the backend used when ENV=local and no URL is configured.
	// No other environment gets a compiled-in backend host.
	DefaultLocalBackendURL = "http://localhost:8081/api/web/v1"

	// DefaultReadTimeout is the default outbound timeout for list/get calls.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the default outbound timeout for create/update calls.
	DefaultWriteTimeout = 15 * time.Second
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	Env           string
	DebugMode     bool
	HTTPServer    Server
	MetricsServer Server
	Backend       Backend
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Backend represents the external product API configuration.
type Backend struct {
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend configuration incomplete: %w for key: %s", ErrMissingConfig, BackendBaseURLEnv)
	}
	if _, err := url.Parse(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("invalid backend base URL %q: %w", c.Backend.BaseURL, err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSeconds(name string, defaultValue time.Duration) time.Duration {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil && val > 0 {
		return time.Duration(val) * time.Second
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
// The backend base URL falls back to a loopback address only when ENV=local;
// every other environment must supply it explicitly.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		Env:       os.Getenv(Env),
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		Backend: Backend{
			BaseURL:      os.Getenv(BackendBaseURLEnv),
			ReadTimeout:  getEnvAsSeconds(BackendReadTimeoutEnv, DefaultReadTimeout),
			WriteTimeout: getEnvAsSeconds(BackendWriteTimeoutEnv, DefaultWriteTimeout),
		},
	}

	if conf.Backend.BaseURL == "" && conf.Env == LocalEnv {
		conf.Backend.BaseURL = DefaultLocalBackendURL
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
