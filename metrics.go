package badgecheck

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names recorded by the Verifier.
const (
	MetricVerifications       = "badgecheck_verifications_total"
	MetricVerificationSeconds = "badgecheck_verification_seconds"
	MetricCachedDocuments     = "badgecheck_cached_documents"
)

// Metrics is a generic metrics interface for the verifier.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
	SetGauge(name string, value float64, tags map[string]string)
}

// NoopMetrics is a default metrics implementation that does nothing.
type NoopMetrics struct{}

func (m *NoopMetrics) IncCounter(name string, tags map[string]string)                      {}
func (m *NoopMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {}
func (m *NoopMetrics) SetGauge(name string, value float64, tags map[string]string)         {}

// PrometheusMetrics implements the Metrics interface using Prometheus.
// Collectors are created and registered on first use; later calls for the
// same name must carry the same tag keys.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewPrometheusMetrics returns a Metrics implementation backed by
// Prometheus. A nil registerer means prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registerer prometheus.Registerer) Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: registerer,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name + " counter"}, keys(tags))
		m.registerer.MustRegister(vec)
		m.counters[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Inc()
}

func (m *PrometheusMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    name + " histogram",
			Buckets: prometheus.DefBuckets,
		}, keys(tags))
		m.registerer.MustRegister(vec)
		m.histograms[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Observe(value)
}

func (m *PrometheusMetrics) SetGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: name + " gauge"}, keys(tags))
		m.registerer.MustRegister(vec)
		m.gauges[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Set(value)
}

// keys returns the tag names in sorted order.
func keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
