package dashclient

import "net/http"

// Kind classifies a user-facing notification by what the UI should tell the
// user, independent of which call failed.
type Kind string

const (
	KindSessionExpired Kind = "session_expired"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindServerError    Kind = "server_error"
	KindTimeout        Kind = "timeout"
	KindNetworkError   Kind = "network_error"
)

// Notification is surfaced to the UI layer for toasts/banners. It fires in
// addition to, not instead of, the per-call failure envelope.
type Notification struct {
	Kind       Kind
	StatusCode int
	Message    string
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func kindForStatus(status int) (Kind, bool) {
	switch {
	case status == http.StatusUnauthorized:
		return KindSessionExpired, true
	case status == http.StatusForbidden:
		return KindForbidden, true
	case status == http.StatusNotFound:
		return KindNotFound, true
	case status == http.StatusTooManyRequests:
		return KindRateLimited, true
	case status == http.StatusRequestTimeout:
		return KindTimeout, true
	case status >= 500:
		return KindServerError, true
	default:
		return "", false
	}
}
