package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Session lifecycle metrics
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streammeter_sessions_started_total",
			Help: "Total streaming sessions started",
		},
	)

	SessionsStopped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streammeter_sessions_stopped_total",
			Help: "Total streaming sessions stopped by their owner",
		},
	)

	SessionsReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streammeter_sessions_reaped_total",
			Help: "Total sessions force-closed for exceeding the max duration",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "streammeter_active_sessions",
			Help: "Number of currently open sessions",
		},
	)

	// Ledger and publish metrics
	LedgerUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "streammeter_ledger_users",
			Help: "Number of users with a ledger entry",
		},
	)

	PublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streammeter_publishes_total",
			Help: "Total ledger snapshot publish attempts",
		},
		[]string{"outcome"},
	)

	PublishDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streammeter_publish_duration_seconds",
			Help:    "Ledger snapshot publish duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		SessionsStarted,
		SessionsStopped,
		SessionsReaped,
		ActiveSessions,
		LedgerUsers,
		PublishesTotal,
		PublishDuration,
	)
}
