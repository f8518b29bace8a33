package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cloud_api"

// Metrics holds the Prometheus counters, histograms, and gauges for the API.
type Metrics struct {
	// HTTP metrics.
	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route

	// Prediction metrics.
	Predictions         *prometheus.CounterVec // labels: cloud_type
	ValidationErrors    *prometheus.CounterVec // labels: reason={no_file,read_failure,empty_file,file_too_large,invalid_file_type}
	PredictionDuration  prometheus.Histogram
	PredictionsInFlight prometheus.Gauge

	// Prediction event stream metrics.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
	EventsEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all API metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.Predictions,
		m.ValidationErrors,
		m.PredictionDuration,
		m.PredictionsInFlight,
		m.EventsPublished,
		m.EventsEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 3, 5},
		}, []string{"route"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Mock predictions returned, by cloud type.",
		}, []string{"cloud_type"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Rejected uploads by failed validation rule.",
		}, []string{"reason"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Simulated processing time of successful predictions.",
			Buckets:   []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2, 2.5, 3},
		}),
		PredictionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "predictions_in_flight",
			Help:      "Predictions currently waiting on the simulated delay.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_events_total",
			Help:      "Prediction events handed to Kafka, by delivery outcome.",
		}, []string{"outcome"}),
		EventsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prediction_events_enabled",
			Help:      "1 when prediction events are published to Kafka, 0 otherwise.",
		}),
	}
}
