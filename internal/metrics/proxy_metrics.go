package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for proxied requests.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
)

var (
	// ProxiedRequests counts requests forwarded (or short-circuited) per
	// operation and outcome.
	ProxiedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxied_requests_total",
		Help: "The total number of proxied product API requests by operation and outcome",
	}, []string{"operation", "outcome"})

	// BackendTimeouts counts outbound calls that exceeded their deadline.
	BackendTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_timeouts_total",
		Help: "The total number of outbound backend calls that timed out",
	}, []string{"operation"})
)
