// Package metrics holds the ingest counters. A CLI run has no scrape
// endpoint, so counters are written to a node-exporter textfile instead.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chromaingest"

// Metrics groups the collectors of one process
type Metrics struct {
	Registry     *prometheus.Registry
	Documents    *prometheus.CounterVec
	RowsInserted *prometheus.CounterVec
	Issues       *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		RowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Rows committed, by sink.",
		}, []string{"sink"}),
		Issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_issues_total",
			Help:      "Non-fatal extraction issues, by kind.",
		}, []string{"kind"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time spent on one document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"mode"}),
	}
	m.Registry.MustRegister(m.Documents, m.RowsInserted, m.Issues, m.Duration)
	return m
}

// WriteTextfile dumps the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
