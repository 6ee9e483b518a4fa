// Package metrics exposes collector counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	readingsAccepted prometheus.Counter
	readingsRejected *prometheus.CounterVec
	journalErrors    prometheus.Counter
	lastFill         prometheus.Gauge
	lastDistance     prometheus.Gauge
}

// NewMetrics registers every collector on its own registry so several
// servers can live in one process (tests).
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		readingsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fill_readings_accepted_total",
			Help: "Readings stored by the ingest endpoint.",
		}),
		readingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fill_readings_rejected_total",
			Help: "Ingest requests rejected, by reason.",
		}, []string{"reason"}),
		journalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fill_journal_errors_total",
			Help: "Failed journal inserts.",
		}),
		lastFill: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fill_last_percent",
			Help: "Fill percentage of the most recent reading.",
		}),
		lastDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fill_last_distance_cm",
			Help: "Distance of the most recent reading in centimetres.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.readingsAccepted,
		m.readingsRejected,
		m.journalErrors,
		m.lastFill,
		m.lastDistance,
	)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests and observes their duration under route.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ReadingAccepted(distance float64, fill int) {
	if m == nil {
		return
	}
	m.readingsAccepted.Inc()
	m.lastDistance.Set(distance)
	m.lastFill.Set(float64(fill))
}

func (m *Metrics) ReadingRejected(reason string) {
	if m == nil {
		return
	}
	m.readingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) JournalError() {
	if m == nil {
		return
	}
	m.journalErrors.Inc()
}
