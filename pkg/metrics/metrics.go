// Package metrics provides Prometheus instrumentation for recflow components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for recflow components.
type Registry struct {
	// Pipeline run metrics
	RunsStarted   *prometheus.CounterVec
	RunsSucceeded *prometheus.CounterVec
	RunsAborted   *prometheus.CounterVec

	// Per-item metrics
	LinesRead        *prometheus.CounterVec
	ParseFailures    *prometheus.CounterVec
	RecordsCreated   *prometheus.CounterVec
	RecordsExisting  *prometheus.CounterVec
	CreateRejections *prometheus.CounterVec

	// Stage metrics
	StageDuration *prometheus.HistogramVec
	InFlight      *prometheus.GaugeVec

	// Scheduler metrics
	ScheduledRuns  *prometheus.CounterVec
	ScheduledSkips *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by recflow components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		RunsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "runs_started_total",
				Help:      "Total number of pipeline runs started",
			},
			[]string{"pipeline"},
		),

		RunsSucceeded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "runs_succeeded_total",
				Help:      "Total number of pipeline runs that completed successfully",
			},
			[]string{"pipeline"},
		),

		RunsAborted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "runs_aborted_total",
				Help:      "Total number of pipeline runs that failed or timed out",
			},
			[]string{"pipeline"},
		),

		LinesRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "lines_read_total",
				Help:      "Total number of input lines pulled from line sources",
			},
			[]string{"pipeline"},
		),

		ParseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "parse_failures_total",
				Help:      "Total number of lines dropped because they failed parsing",
			},
			[]string{"pipeline"},
		),

		RecordsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "records_created_total",
				Help:      "Total number of records created",
			},
			[]string{"pipeline"},
		),

		RecordsExisting: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "records_existing_total",
				Help:      "Total number of records skipped because they already exist",
			},
			[]string{"pipeline"},
		),

		CreateRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "create_rejections_total",
				Help:      "Total number of records dropped after a creation rejection",
			},
			[]string{"pipeline"},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of asynchronous stage calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline", "stage"},
		),

		InFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "recflow",
				Subsystem: "pipeline",
				Name:      "in_flight",
				Help:      "Number of items currently occupying a concurrency slot",
			},
			[]string{"pipeline"},
		),

		ScheduledRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "schedule",
				Name:      "runs_total",
				Help:      "Total number of scheduled ingestion runs triggered",
			},
			[]string{"job"},
		),

		ScheduledSkips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recflow",
				Subsystem: "schedule",
				Name:      "skips_total",
				Help:      "Total number of scheduled runs skipped because the previous run was still active",
			},
			[]string{"job"},
		),
	}
}
