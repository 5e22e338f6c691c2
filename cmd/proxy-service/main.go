package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ihorko/product-dashboard/internal/backend"
	"github.com/ihorko/product-dashboard/internal/config"
	httpAPI "github.com/ihorko/product-dashboard/internal/http"
	"github.com/ihorko/product-dashboard/internal/http/controller"
	"github.com/ihorko/product-dashboard/internal/logger"
	"github.com/ihorko/product-dashboard/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)

	backendClient := backend.New(
		conf.Backend.BaseURL,
		conf.Backend.ReadTimeout,
		conf.Backend.WriteTimeout,
	)

	// Start HTTP server
	ctr := controller.New(conf)
	productCtr := controller.NewProductController(backendClient)
	engine := gin.Default()
	engine = httpAPI.InitRouter(conf, engine, ctr, productCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("proxy server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	// Start metrics server
	metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
