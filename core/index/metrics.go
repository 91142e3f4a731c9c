package index

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus collectors of one IndexWriter.
type WriterMetrics struct {
	DocsAdded     prometheus.Counter
	Flushes       prometheus.Counter
	Merges        prometheus.Counter
	MergedDocs    prometheus.Counter
	DeletedFiles  prometheus.Counter
	DeferredFiles prometheus.Counter
	Segments      prometheus.Gauge
	MergeDuration prometheus.Histogram
}

// Creates the writer collectors and registers them on registerer, or
// on a private registry when registerer is nil.
func NewWriterMetrics(registerer prometheus.Registerer) (*WriterMetrics, error) {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	m := &WriterMetrics{
		DocsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "docs_added_total",
			Help:      "Documents added through AddDocument.",
		}),
		Flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "flushes_total",
			Help:      "Merges of buffered RAM segments into the directory.",
		}),
		Merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "merges_total",
			Help:      "Segment merges performed.",
		}),
		MergedDocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "merged_docs_total",
			Help:      "Documents written by segment merges.",
		}),
		DeletedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "deleted_files_total",
			Help:      "Obsolete index files deleted.",
		}),
		DeferredFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "deferred_files_total",
			Help:      "Obsolete files that could not be deleted and were recorded in the deletable file.",
		}),
		Segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "segments",
			Help:      "Segments in the writer's current segment infos.",
		}),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ferret",
			Subsystem: "writer",
			Name:      "merge_duration_seconds",
			Help:      "Duration of segment merges in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
		}),
	}
	var err error
	for _, c := range []*prometheus.Counter{&m.DocsAdded, &m.Flushes, &m.Merges,
		&m.MergedDocs, &m.DeletedFiles, &m.DeferredFiles} {
		if *c, err = register(registerer, *c); err != nil {
			return nil, err
		}
	}
	if m.Segments, err = register(registerer, m.Segments); err != nil {
		return nil, err
	}
	if m.MergeDuration, err = register(registerer, m.MergeDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// Registers c, or returns the equal collector registered before by
// another writer of the same registry.
func register[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
