package monitoring

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)
	TenantResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Total number of successful tenant resolutions by strategy",
		},
		[]string{"strategy"},
	)
	LoginDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "login_duration_seconds",
			Help:    "Duration of the full login flow in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// InitMetrics registers all collectors. Registration failures are logged, not
// fatal; metrics are never worth refusing to serve traffic over.
func InitMetrics() {
	for _, c := range []prometheus.Collector{Logins, TenantResolutions, LoginDuration} {
		if err := prometheus.Register(c); err != nil {
			slog.Error("Failed to register metric", "error", err)
		}
	}
}
