package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK     = "ok"
	ResultFailed = "failed"
	ResultExists = "exists"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Connection routing metrics
	SchemaSwitchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_schema_switch_total",
			Help: "Schema switches performed on acquired connections, by result",
		},
		[]string{"result"},
	)

	ConnectionResetFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tenancy_connection_reset_failures_total",
			Help: "Connections discarded because their search_path could not be reset",
		},
	)

	// Provisioning metrics
	ProvisionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancy_provision_total",
			Help: "Tenant provisioning attempts, by result",
		},
		[]string{"result"},
	)

	SeededRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tenancy_seeded_rows_total",
			Help: "Baseline expense rows inserted by startup reconciliation",
		},
	)
)
