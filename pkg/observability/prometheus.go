package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics exports metrics through a Prometheus registry.
// Metric names are converted from dotted form (shop.tasks.failed) to
// Prometheus form (shop_tasks_failed). Label names are fixed by the first
// call for a given metric; later calls fill missing labels with "".
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*labeledVec[*prometheus.CounterVec]
	gauges     map[string]*labeledVec[*prometheus.GaugeVec]
	histograms map[string]*labeledVec[*prometheus.HistogramVec]
}

type labeledVec[V any] struct {
	vec    V
	labels []string
}

// NewPrometheusMetrics creates metrics backed by a fresh registry that also
// carries the Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:   registry,
		counters:   make(map[string]*labeledVec[*prometheus.CounterVec]),
		gauges:     make(map[string]*labeledVec[*prometheus.GaugeVec]),
		histograms: make(map[string]*labeledVec[*prometheus.HistogramVec]),
	}
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	v, ok := m.counters[name]
	if !ok {
		labels := labelNames(tags)
		v = &labeledVec[*prometheus.CounterVec]{
			vec:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: promName(name) + "_total", Help: name}, labels),
			labels: labels,
		}
		m.registry.MustRegister(v.vec)
		m.counters[name] = v
	}
	m.mu.Unlock()
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	v, ok := m.gauges[name]
	if !ok {
		labels := labelNames(tags)
		v = &labeledVec[*prometheus.GaugeVec]{
			vec:    prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: promName(name), Help: name}, labels),
			labels: labels,
		}
		m.registry.MustRegister(v.vec)
		m.gauges[name] = v
	}
	m.mu.Unlock()
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Set(value)
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	v := m.histogram(name, "", tags)
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Observe(value)
}

// Timing records the duration in seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	v := m.histogram(name, "_seconds", tags)
	v.vec.WithLabelValues(labelValues(v.labels, tags)...).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) histogram(name, suffix string, tags []Tag) *labeledVec[*prometheus.HistogramVec] {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.histograms[name]
	if !ok {
		labels := labelNames(tags)
		v = &labeledVec[*prometheus.HistogramVec]{
			vec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    promName(name) + suffix,
				Help:    name,
				Buckets: prometheus.DefBuckets,
			}, labels),
			labels: labels,
		}
		m.registry.MustRegister(v.vec)
		m.histograms[name] = v
	}
	return v
}

func promName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func labelNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Key)
	}
	sort.Strings(names)
	return names
}

func labelValues(names []string, tags []Tag) []string {
	values := make([]string, len(names))
	for i, name := range names {
		for _, t := range tags {
			if t.Key == name {
				values[i] = t.Value
				break
			}
		}
	}
	return values
}
