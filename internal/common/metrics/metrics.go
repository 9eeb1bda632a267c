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

	UseCasesValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_usecases_validated_total",
			Help: "Total number of use cases classified, by resulting status",
		},
		[]string{"status"},
	)

	ReadinessScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_readiness_score",
			Help:    "Distribution of computed readiness scores",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
		[]string{"status"},
	)

	MaturityLevelComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_maturity_level_total",
			Help: "Total number of maturity computations, by resulting level",
		},
		[]string{"level"},
	)

	ValidationCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_validation_cache_hits_total",
			Help: "Validation result cache lookups, by outcome",
		},
		[]string{"outcome"},
	)
)
