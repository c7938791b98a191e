// Package metrics exposes Prometheus counters for registry lookups and
// chained container mutations.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zjrosen/mibstore/internal/container"
)

// Metrics holds the collectors and the private registry they live in.
type Metrics struct {
	Lookups       *prometheus.CounterVec
	ChainOps      *prometheus.CounterVec
	ChainFailures *prometheus.CounterVec
	TableRows     prometheus.Gauge
	registry      *prometheus.Registry
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mibstore_factory_lookups_total",
				Help: "Factory lookups by kind (get or find) and result",
			},
			[]string{"kind", "found"},
		),
		ChainOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mibstore_chain_operations_total",
				Help: "Chained container mutations by operation",
			},
			[]string{"op"},
		),
		ChainFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mibstore_chain_index_failures_total",
				Help: "Secondary index failures during chained mutations",
			},
			[]string{"op", "index_type"},
		),
		TableRows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mibstore_expression_rows",
				Help: "Rows in the expression table",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.Lookups)
	m.registry.MustRegister(m.ChainOps)
	m.registry.MustRegister(m.ChainFailures)
	m.registry.MustRegister(m.TableRows)
	return m
}

// ObserveLookup counts one factory lookup.
func (m *Metrics) ObserveLookup(kind string, found bool) {
	m.Lookups.WithLabelValues(kind, strconv.FormatBool(found)).Inc()
}

// ObserveChain counts one chained mutation and each of its index failures.
func (m *Metrics) ObserveChain(op container.Op, r container.Result) {
	m.ChainOps.WithLabelValues(string(op)).Inc()
	for _, f := range r.Failures {
		m.ChainFailures.WithLabelValues(string(op), f.Type).Inc()
	}
}

// SetTableRows records the current expression table size.
func (m *Metrics) SetTableRows(n int) {
	m.TableRows.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
