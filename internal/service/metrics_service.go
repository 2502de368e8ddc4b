package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationRuns      *prometheus.CounterVec
	generationDuration  prometheus.Observer
	generationConflicts prometheus.Counter
	distributionScore   prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	generationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_runs_total",
		Help: "Timetable generation runs by outcome",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Wall time of a single generation run",
		Buckets: prometheus.DefBuckets,
	})

	generationConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_generation_conflicts_total",
		Help: "Total conflicts reported by generation runs",
	})

	distributionScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_distribution_score",
		Help: "Distribution score of the most recent generation run",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationRuns, generationDuration, generationConflicts, distributionScore, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		generationRuns:      generationRuns,
		generationDuration:  generationDuration,
		generationConflicts: generationConflicts,
		distributionScore:   distributionScore,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveRequest records one handled HTTP request.
func (m *MetricsService) ObserveRequest(method, path, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveGeneration records the outcome of one generation run.
func (m *MetricsService) ObserveGeneration(success bool, conflicts int, score float64, duration time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.generationRuns.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
	m.generationConflicts.Add(float64(conflicts))
	m.distributionScore.Set(score)
}
