// Package metrics defines the Prometheus collectors for retrieval, model
// lifecycle and HTTP traffic, and exposes a scrape handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kotoba"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RetrievalsTotal     prometheus.Counter
	RetrievalDuration   prometheus.Histogram
	ModelLoadsTotal     *prometheus.CounterVec
	ModelBuildDuration  prometheus.Histogram
	ModelBuildErrors    prometheus.Counter
	ModelTerms          prometheus.Gauge
	ModelFeatures       prometheus.Gauge
	TranslationsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them on a dedicated registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		RetrievalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrievals_total",
				Help:      "Total number of term retrievals.",
			},
		),
		RetrievalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_duration_seconds",
				Help:      "Term retrieval latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		ModelLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_loads_total",
				Help:      "Models installed into the engine by source (cache, build).",
			},
			[]string{"source"},
		),
		ModelBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_build_duration_seconds",
				Help:      "Time spent building the vector space from the corpus.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
			},
		),
		ModelBuildErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_build_errors_total",
				Help:      "Total number of failed model builds.",
			},
		),
		ModelTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_terms",
				Help:      "Number of terms in the active model.",
			},
		),
		ModelFeatures: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_features",
				Help:      "Number of n-gram features in the active model.",
			},
		),
		TranslationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translations_total",
				Help:      "Total translation requests by result (ok, error).",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RetrievalsTotal,
		m.RetrievalDuration,
		m.ModelLoadsTotal,
		m.ModelBuildDuration,
		m.ModelBuildErrors,
		m.ModelTerms,
		m.ModelFeatures,
		m.TranslationsTotal,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRetrieval records one retrieval and its latency.
func (m *Metrics) ObserveRetrieval(d time.Duration) {
	if m == nil {
		return
	}
	m.RetrievalsTotal.Inc()
	m.RetrievalDuration.Observe(d.Seconds())
}

// ObserveModel records a model becoming active.
func (m *Metrics) ObserveModel(source string, terms, features int) {
	if m == nil {
		return
	}
	m.ModelLoadsTotal.WithLabelValues(source).Inc()
	m.ModelTerms.Set(float64(terms))
	m.ModelFeatures.Set(float64(features))
}

// ObserveBuild records a model build attempt.
func (m *Metrics) ObserveBuild(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ModelBuildErrors.Inc()
		return
	}
	m.ModelBuildDuration.Observe(d.Seconds())
}

// ObserveTranslation records a translation outcome.
func (m *Metrics) ObserveTranslation(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.TranslationsTotal.WithLabelValues(result).Inc()
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
