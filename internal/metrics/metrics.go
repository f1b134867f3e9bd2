package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route pattern, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route pattern, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PageViews counts rendered pages by page slug.
	PageViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_views_total",
			Help: "Total number of page renders by page",
		},
		[]string{"page"},
	)

	// ArtifactsSaved counts saved artifacts by kind (notes, transcripts, audio).
	ArtifactsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifacts_saved_total",
			Help: "Total number of saved artifacts by kind",
		},
		[]string{"kind"},
	)

	// ReminderEmails counts reminder e-mails by status (sent, failed).
	ReminderEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_emails_total",
			Help: "Total number of study reminder e-mails by status",
		},
		[]string{"status"},
	)

	// LoginAttempts counts login and sign-up attempts by action and outcome.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of login and sign-up attempts by action and outcome",
		},
		[]string{"action", "outcome"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PageViews, ArtifactsSaved, ReminderEmails, LoginAttempts)
	})
}

// RecordRequest records duration and count for an HTTP request. route must be a route
// pattern such as /pages/{slug}, never a raw URL path.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func IncPageView(page string) {
	PageViews.WithLabelValues(page).Inc()
}

func IncArtifactSaved(kind string) {
	ArtifactsSaved.WithLabelValues(kind).Inc()
}

// IncReminderEmail increments the reminder counter for status (sent, failed).
func IncReminderEmail(status string) {
	ReminderEmails.WithLabelValues(status).Inc()
}

// IncAuthAttempt increments the auth counter, e.g. ("login", "denied").
func IncAuthAttempt(action, outcome string) {
	LoginAttempts.WithLabelValues(action, outcome).Inc()
}
