package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherly_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_users_registered_total",
			Help: "Total users registered",
		},
	)

	ChatsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_chats_created_total",
			Help: "Total chats created",
		},
	)

	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"sender"}, // "user" or "system"
	)

	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_validations_total",
			Help: "Total topic validations by outcome",
		},
		[]string{"result"}, // "on_topic", "off_topic" or "error"
	)

	InterventionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_interventions_total",
			Help: "Total system reminder messages posted",
		},
	)

	SummariesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherly_summaries_generated_total",
			Help: "Total chat summaries generated",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherly_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherly_llm_request_duration_seconds",
			Help:    "Language model call latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"operation"}, // "validate" or "summarize"
	)
)
