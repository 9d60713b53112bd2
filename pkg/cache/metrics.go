package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "findcache"

// Metrics holds the Prometheus collectors updated by an Engine.
type Metrics struct {
	// Lookups counts Find calls. Labels: category, result (hit, miss).
	Lookups *prometheus.CounterVec

	// Saves counts newly created entries. Labels: category.
	Saves *prometheus.CounterVec

	// Evictions counts entries removed for expiry. Labels: category.
	Evictions *prometheus.CounterVec

	// Entries is the number of entries held. Labels: category.
	Entries *prometheus.GaugeVec
}

// NewMetrics creates and registers the cache collectors with reg.
// A nil reg uses a private registry, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lookups_total",
			Help:      "Cache lookups by category and result.",
		}, []string{"category", "result"}),
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "saves_total",
			Help:      "Entries created by category.",
		}, []string{"category"}),
		Evictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evictions_total",
			Help:      "Expired entries removed by category.",
		}, []string{"category"}),
		Entries: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "entries",
			Help:      "Entries currently cached by category.",
		}, []string{"category"}),
	}
}

func (m *Metrics) lookup(cat string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Lookups.WithLabelValues(cat, result).Inc()
}

func (m *Metrics) save(cat string) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(cat).Inc()
}

func (m *Metrics) evicted(cat string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Evictions.WithLabelValues(cat).Add(float64(n))
}

func (m *Metrics) size(cat string, n int) {
	if m == nil {
		return
	}
	m.Entries.WithLabelValues(cat).Set(float64(n))
}
