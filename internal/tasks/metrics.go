package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelOutcome = "outcome"

// Sync metrics
var (
	SyncOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biotune_sync_outcomes_total",
			Help: "Completed link syncs by outcome.",
		},
		[]string{labelOutcome},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biotune_sync_duration_seconds",
			Help:    "Wall time of a single link sync.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SyncInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "biotune_sync_in_flight",
			Help: "Link syncs currently running.",
		},
	)
)

// Scheduler metrics
var (
	SchedulerTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biotune_scheduler_ticks_total",
			Help: "Scheduler ticks dispatched.",
		},
	)

	SyncSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biotune_sync_skipped_total",
			Help: "Links skipped because the previous sync for the link was still running.",
		},
	)

	LoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biotune_scheduler_load_failures_total",
			Help: "Ticks that could not load links from the store.",
		},
	)
)
