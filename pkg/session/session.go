// Package session holds the client-side authentication state as an explicit,
// injectable store. It is decoupled from any particular identity backend: the
// provider only has to hand over bearer tokens, and interested UI code
// subscribes to sign-in/sign-out changes instead of reading globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoRefresh is returned when a token has expired and no refresh function
// was configured.
var ErrNoRefresh = errors.New("token expired and no refresh configured")

// User is the identity carried by the current session token.
type User struct {
	ID    string
	Email string
	Name  string
}

// TokenSource supplies the freshest bearer token before every API call.
// An empty token with a nil error means "not signed in"; callers proceed
// without credentials and let the backend reject the request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	CurrentUser() (User, bool)
	OnChange(fn func(User, bool)) (unsubscribe func())
}

// RefreshFunc obtains a new token from the identity provider.
type RefreshFunc func(ctx context.Context) (string, error)

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Store is the default TokenSource. It caches the current token, refreshes it
// shortly before expiry, and notifies subscribers when the signed-in user
// changes. Safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	user      User
	signedIn  bool

	refresh RefreshFunc
	skew    time.Duration

	subsMu  sync.Mutex
	subs    map[int]func(User, bool)
	nextSub int
}

// NewStore creates a session store. refresh may be nil; the store then only
// serves tokens set explicitly via SetToken.
func NewStore(refresh RefreshFunc) *Store {
	return &Store{
		refresh: refresh,
		skew:    30 * time.Second,
		subs:    map[int]func(User, bool){},
	}
}

// SetToken installs a token obtained from the identity provider and notifies
// subscribers. The token's claims are read without signature verification:
// the provider verified it when issuing, this layer only needs exp and the
// user identity for display.
func (s *Store) SetToken(token string) error {
	parsed, err := parseClaims(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = User{ID: parsed.Subject, Email: parsed.Email, Name: parsed.Name}
	s.signedIn = true
	if parsed.ExpiresAt != nil {
		s.expiresAt = parsed.ExpiresAt.Time
	} else {
		s.expiresAt = time.Time{}
	}
	user := s.user
	s.mu.Unlock()

	s.notify(user, true)
	return nil
}

// SignOut clears the session and notifies subscribers.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.user = User{}
	s.signedIn = false
	s.mu.Unlock()

	s.notify(User{}, false)
}

// Token returns the current bearer token, refreshing it first when it is
// expired or about to expire. Returns an empty token when nobody is signed in.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if !s.signedIn {
		s.mu.Unlock()
		return "", nil
	}
	if s.expiresAt.IsZero() || time.Until(s.expiresAt) > s.skew {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	if s.refresh == nil {
		return "", ErrNoRefresh
	}
	fresh, err := s.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session token: %w", err)
	}
	if err := s.SetToken(fresh); err != nil {
		return "", err
	}
	return fresh, nil
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.signedIn
}

// OnChange registers a callback fired on sign-in, sign-out, and token refresh.
// The returned function removes the subscription.
func (s *Store) OnChange(fn func(User, bool)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(user User, signedIn bool) {
	s.subsMu.Lock()
	callbacks := make([]func(User, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range callbacks {
		fn(user, signedIn)
	}
}

func parseClaims(token string) (*claims, error) {
	parsed := &claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	return parsed, nil
}

// Static is a TokenSource with a fixed token and user, for tests and for
// wiring environments without an identity provider.
type Static struct {
	BearerToken string
	User        User
}

func (s Static) Token(_ context.Context) (string, error) { return s.BearerToken, nil }

func (s Static) CurrentUser() (User, bool) { return s.User, s.BearerToken != "" }

func (s Static) OnChange(_ func(User, bool)) func() { return func() {} }
