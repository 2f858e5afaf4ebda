// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ScansScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_scores_total",
			Help: "Total number of scans scored, by band",
		},
		[]string{"band"},
	)

	ScanScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_score_value",
			Help:    "Distribution of overall skin scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ScanResponsesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_responses_served_total",
			Help: "Total scan responses served, by entitlement view",
		},
		[]string{"view"},
	)

	RawReportRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raw_report_repairs_total",
			Help: "Count of malformed vision report fields repaired with defaults",
		},
		[]string{"field"},
	)
)
