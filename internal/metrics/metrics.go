package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staff_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staff_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staff_login_attempts_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)
	RequestsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staff_requests_created_total",
			Help: "Supply requests created.",
		},
	)
	HoursSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staff_schedule_hours_saved_total",
			Help: "Hour grid cells upserted.",
		},
	)
	SchedulesClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staff_schedules_closed_total",
			Help: "Schedule close operations.",
		},
	)
	ReportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staff_reports_generated_total",
			Help: "CSV reports generated by kind.",
		},
		[]string{"kind"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			LoginAttempts,
			RequestsCreated,
			HoursSaved,
			SchedulesClosed,
			ReportsGenerated,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
