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
)

var (
	DialogueTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Conversation turns processed, by the state the turn ended in",
		},
		[]string{"state"},
	)

	DialogueTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_transitions_total",
			Help: "State transitions taken by the dialogue engine",
		},
		[]string{"from", "to"},
	)

	RendererFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renderer_fallbacks_total",
			Help: "Responses replaced by the fixed apology",
		},
		[]string{"provider", "reason"},
	)

	CatalogMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_matches",
			Help:    "Number of schemes above the presentation threshold per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	MatchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_lookups_total",
			Help: "Match cache lookups by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dialogue_active_sessions",
			Help: "Conversation sessions currently held in memory",
		},
	)

	SpeechRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_requests_total",
			Help: "Speech gateway calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Outbound HTTP calls by upstream and status",
		},
		[]string{"upstream", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Outbound HTTP call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)
)
