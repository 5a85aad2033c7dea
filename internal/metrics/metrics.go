package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session / batching metrics
var (
	// ActiveSessions tracks the number of live sessions in the registry
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizzma_active_sessions",
			Help: "Number of live sessions in the registry",
		},
	)

	// ConnectedClients tracks audience connections across all sessions
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizzma_connected_clients",
			Help: "Audience connections across all sessions",
		},
	)

	// BatchFlushDuration tracks batch flush latency (preprocessing included)
	BatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quizzma_batch_flush_duration_seconds",
			Help:    "Batch flush duration in seconds, preprocessing included",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// BatchFlushSize tracks answers per flushed batch
	BatchFlushSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quizzma_batch_flush_size",
			Help:    "Answers per flushed batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// PreprocessingFallbacksTotal counts flushes that fell back to raw text
	PreprocessingFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzma_preprocessing_fallbacks_total",
			Help: "Batch flushes that fell back to raw answer text",
		},
	)

	// SentimentTaskFailuresTotal counts failed background sentiment tasks
	SentimentTaskFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzma_sentiment_task_failures_total",
			Help: "Background sentiment tasks that failed",
		},
	)
)

// Broadcast metrics
var (
	// BroadcastSendFailuresTotal counts per-connection send failures
	BroadcastSendFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzma_broadcast_send_failures_total",
			Help: "Per-connection send failures during broadcast",
		},
	)

	// BroadcastsTotal counts broadcasts by message type
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizzma_broadcasts_total",
			Help: "Broadcasts by message type",
		},
		[]string{"type"},
	)
)

// Analysis pipeline metrics
var (
	// AnalysisStepDuration tracks orchestrator step latency by step name
	AnalysisStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizzma_analysis_step_duration_seconds",
			Help:    "Analysis step duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"step"},
	)

	// TopicSummariesSkippedTotal counts per-topic summaries skipped on failure
	TopicSummariesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzma_topic_summaries_skipped_total",
			Help: "Per-topic summaries skipped because the summarizer failed",
		},
	)

	// LLMBreakerState tracks the LLM circuit breaker state (0=closed, 1=half-open, 2=open)
	LLMBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizzma_llm_breaker_state",
			Help: "LLM circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// HTTP metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizzma_http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)

	// AnswersRateLimitedTotal counts answer submissions rejected by the rate limiter
	AnswersRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizzma_answers_rate_limited_total",
			Help: "Answer submissions rejected by the rate limiter",
		},
	)
)
