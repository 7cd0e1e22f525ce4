package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelRoute  = "route"
	labelMethod = "method"
	labelStatus = "status"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biotune_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{labelRoute, labelMethod, labelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biotune_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{labelRoute},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biotune_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
)
