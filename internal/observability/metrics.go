package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	progressEventsTotal *prometheus.CounterVec
	activitiesTotal     *prometheus.CounterVec
	sseClientsActive    prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used for API and
// generation observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "praxis_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		progressEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_progress_events_total",
			Help: "Progress events emitted by generation runs.",
		}, []string{"type"})

		activitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "praxis_activities_total",
			Help: "Generation runs by terminal outcome.",
		}, []string{"language", "outcome"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "praxis_sse_clients_active",
			Help: "Progress subscribers currently connected.",
		})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			progressEventsTotal, activitiesTotal, sseClientsActive)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ProgressEvents exposes the counter for emitted progress events.
func ProgressEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return progressEventsTotal
}

// Activities exposes the counter for terminal generation outcomes.
func Activities() *prometheus.CounterVec {
	RegisterMetrics()
	return activitiesTotal
}

// SSEClientsActive exposes the gauge of connected progress subscribers.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
