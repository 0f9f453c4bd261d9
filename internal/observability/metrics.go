package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus gauges and counters describing month builds.
// The builder is a one-shot job, so metrics live on a private registry and are
// flushed to a node_exporter textfile instead of being scraped.
type Metrics struct {
	registry *prometheus.Registry

	BuildsTotal        *prometheus.CounterVec // labels: region, outcome={success,failure}
	DaysBuilt          *prometheus.GaugeVec   // labels: region
	BuildDuration      *prometheus.GaugeVec   // labels: region
	LastSuccessSeconds *prometheus.GaugeVec   // labels: region
}

// NewMetrics creates all builder metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "monthbuilder",
			Name:      "builds_total",
			Help:      "Month builds by region and outcome.",
		}, []string{"region", "outcome"}),
		DaysBuilt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "monthbuilder",
			Name:      "days_built",
			Help:      "Day records in the most recently built month.",
		}, []string{"region"}),
		BuildDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "monthbuilder",
			Name:      "build_duration_seconds",
			Help:      "Wall time of the most recent build.",
		}, []string{"region"}),
		LastSuccessSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "monthbuilder",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the most recent successful build.",
		}, []string{"region"}),
	}

	m.registry.MustRegister(
		m.BuildsTotal,
		m.DaysBuilt,
		m.BuildDuration,
		m.LastSuccessSeconds,
	)

	return m
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector. The write goes through a temp file and rename.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
