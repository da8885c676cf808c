package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "g4yp1g"

	BotSubsystem        = "bot"
	ModerationSubsystem = "moderation"
)

// Общие метрики для всех HTTP-поверхностей.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Метрики модерации.
var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ModerationSubsystem,
			Name:      "messages_processed_total",
			Help:      "Total number of messages processed by decision",
		},
		[]string{"chat_type", "decision"},
	)

	SpamDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ModerationSubsystem,
			Name:      "spam_detections_total",
			Help:      "Total number of spam detections by reason",
		},
		[]string{"reason"},
	)

	BannedWordHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ModerationSubsystem,
			Name:      "banned_word_hits_total",
			Help:      "Total number of banned word matches",
		},
		[]string{"word"},
	)

	MutesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ModerationSubsystem,
			Name:      "mutes_issued_total",
			Help:      "Total number of mutes issued",
		},
	)

	DeletedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "deleted_messages_total",
			Help:      "Total number of messages deleted",
		},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordMessage(chatType, decision string) {
	MessagesProcessed.WithLabelValues(chatType, decision).Inc()
}

func RecordSpamDetection(reason string) {
	SpamDetections.WithLabelValues(reason).Inc()
}

func RecordBannedWord(word string) {
	BannedWordHits.WithLabelValues(word).Inc()
}

func RecordMute() {
	MutesIssued.Inc()
}

func RecordDeletedMessage() {
	DeletedMessages.Inc()
}
