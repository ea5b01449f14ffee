// Package metrics records payment token and charge metrics.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector defines the interface for collecting service metrics
type Collector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(entity string)
	RecordCacheMiss(entity string)
}

// Operation results
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// Noop is a no-op implementation of Collector
type Noop struct{}

func (Noop) RecordOperationDuration(string, time.Duration) {}
func (Noop) RecordOperationResult(string, string)          {}
func (Noop) RecordCacheHit(string)                         {}
func (Noop) RecordCacheMiss(string)                        {}

// Prometheus is a Collector backed by prometheus vectors.
type Prometheus struct {
	duration *prometheus.HistogramVec
	results  *prometheus.CounterVec
	cache    *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// NewPrometheus registers the paygate metrics on reg.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	p := &Prometheus{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paygate",
			Name:      "operation_duration_seconds",
			Help:      "Duration of payment operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paygate",
			Name:      "operation_results_total",
			Help:      "Payment operations by result.",
		}, []string{"operation", "result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paygate",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by entity and outcome.",
		}, []string{"entity", "outcome"}),
		gatherer: reg,
	}
	reg.MustRegister(p.duration, p.results, p.cache)
	return p
}

func (p *Prometheus) RecordOperationDuration(operation string, duration time.Duration) {
	p.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *Prometheus) RecordOperationResult(operation, result string) {
	p.results.WithLabelValues(operation, result).Inc()
}

func (p *Prometheus) RecordCacheHit(entity string) {
	p.cache.WithLabelValues(entity, "hit").Inc()
}

func (p *Prometheus) RecordCacheMiss(entity string) {
	p.cache.WithLabelValues(entity, "miss").Inc()
}

// Handler serves the registry in the prometheus text format.
func (p *Prometheus) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{}))
}
