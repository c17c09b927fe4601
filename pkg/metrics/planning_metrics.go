// Package metrics provides Prometheus metrics for monitoring planpilot components.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Planning pipeline metrics
var (
	// oracleRequestsTotal records the total number of planning oracle invocations.
	// Labels:
	//   - kind: Request kind ("decompose", "schedule")
	//   - status: Outcome ("success", "error", "parse_error")
	oracleRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planning_oracle_requests_total",
			Help: "Total number of planning oracle invocations",
		},
		[]string{"kind", "status"},
	)

	// oracleRequestDuration records the duration of planning oracle invocations.
	// Labels:
	//   - kind: Request kind ("decompose", "schedule")
	// Buckets: 0.5s, 1s, 2s, 5s, 10s, 30s, 60s, 120s
	oracleRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planning_oracle_request_duration_seconds",
			Help:    "Duration of planning oracle invocations in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// jobsTotal records terminal job outcomes.
	// Labels:
	//   - kind: Job kind ("decompose", "schedule")
	//   - status: Terminal status ("completed", "failed")
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planning_jobs_total",
			Help: "Total number of planning jobs by terminal status",
		},
		[]string{"kind", "status"},
	)

	// scheduleCacheTotal records day-schedule cache lookups during synthesis.
	// Labels:
	//   - result: Lookup outcome ("hit", "miss")
	scheduleCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planning_schedule_cache_lookups_total",
			Help: "Total number of day-schedule fingerprint cache lookups",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(oracleRequestsTotal)
	prometheus.MustRegister(oracleRequestDuration)
	prometheus.MustRegister(jobsTotal)
	prometheus.MustRegister(scheduleCacheTotal)
}

// RecordOracleRequest records one oracle invocation outcome.
func RecordOracleRequest(kind, status string) {
	oracleRequestsTotal.WithLabelValues(kind, status).Inc()
}

// RecordOracleDuration records the duration of one oracle invocation.
func RecordOracleDuration(kind string, durationSeconds float64) {
	oracleRequestDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordJob records a terminal job transition.
func RecordJob(kind, status string) {
	jobsTotal.WithLabelValues(kind, status).Inc()
}

// RecordScheduleCacheLookup records a fingerprint cache hit or miss.
func RecordScheduleCacheLookup(result string) {
	scheduleCacheTotal.WithLabelValues(result).Inc()
}
