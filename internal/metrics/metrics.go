// Package metrics registers the Prometheus collectors of the API server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ComplaintsCreated counts new complaints per department.
	ComplaintsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railmadad_complaints_created_total",
		Help: "Complaints filed, by department",
	}, []string{"department"})

	// StatusTransitions counts status changes.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railmadad_status_transitions_total",
		Help: "Complaint status changes",
	}, []string{"from", "to"})

	// Escalations counts complaints handed off to RPF.
	Escalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railmadad_escalations_total",
		Help: "Complaints escalated to RPF",
	})

	// UrgentComplaints counts complaints classified as urgent at creation.
	UrgentComplaints = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railmadad_urgent_complaints_total",
		Help: "Complaints flagged urgent when filed",
	})

	// Logins counts login attempts by outcome.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railmadad_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	// RateLimited counts requests rejected by a limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railmadad_rate_limited_total",
		Help: "Requests rejected with 429, by limiter",
	}, []string{"limiter"})

	// RequestDuration observes HTTP latency per route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "railmadad_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
