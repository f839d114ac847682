// Package metrics exports conversion telemetry in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FormatConverter/internal/domain"
	"FormatConverter/internal/ports"
)

const namespace = "format_converter"

// Exporter implements ports.Metrics on a private registry.
type Exporter struct {
	registry *prometheus.Registry

	conversions     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheCleared    prometheus.Counter
}

var _ ports.Metrics = (*Exporter)(nil)

// NewExporter registers the conversion collectors on a fresh registry.
func NewExporter() *Exporter {
	e := &Exporter{registry: prometheus.NewRegistry()}

	e.conversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversion requests by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	e.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Conversion cache lookups by result",
		},
		[]string{"result"},
	)

	e.upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Text generation latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"success"},
	)

	e.cacheCleared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "cleared_entries_total",
			Help:      "Entries removed by administrative cache clears",
		},
	)

	e.registry.MustRegister(e.conversions, e.cacheLookups, e.upstreamLatency, e.cacheCleared)
	return e
}

func (e *Exporter) ObserveConversion(format domain.Format, outcome string) {
	e.conversions.WithLabelValues(string(format), outcome).Inc()
}

func (e *Exporter) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	e.cacheLookups.WithLabelValues(result).Inc()
}

func (e *Exporter) ObserveUpstream(duration time.Duration, err error) {
	e.upstreamLatency.WithLabelValues(strconv.FormatBool(err == nil)).Observe(duration.Seconds())
}

func (e *Exporter) ObserveCacheClear(removed int) {
	if removed > 0 {
		e.cacheCleared.Add(float64(removed))
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
