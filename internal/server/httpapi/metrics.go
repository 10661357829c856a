package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyvault_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyvault_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	grantsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyvault_upload_grants_issued_total",
		Help: "Upload grants handed out.",
	})

	uploadsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyvault_uploads_finalized_total",
			Help: "File records created by finalize, by category.",
		},
		[]string{"category"},
	)

	recordsRetired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyvault_records_retired_total",
		Help: "Successful retire calls.",
	})

	bytesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyvault_content_bytes_served_total",
			Help: "Artifact bytes written to clients, by delivery mode.",
		},
		[]string{"mode"},
	)
)
