package promexport

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/telemetrix/errors"
	"github.com/c360/telemetrix/snapshot"
)

const defaultNamespace = "telemetrix"

// TreeSource provides the snapshot tree to export. The driver satisfies
// this interface.
type TreeSource interface {
	// Latest returns the most recently cached snapshot.
	Latest() *snapshot.Tree
}

// Exporter exposes snapshot trees through a private Prometheus
// registry. It collects lazily: each scrape walks whatever tree the
// source currently caches.
type Exporter struct {
	source    TreeSource
	namespace string
	logger    *slog.Logger
	runtime   bool

	registry    *prometheus.Registry
	scrapes     atomic.Uint64
	scrapesDesc *prometheus.Desc
	leavesDesc  *prometheus.Desc
}

var _ prometheus.Collector = (*Exporter)(nil)

// Option configures an Exporter.
type Option func(*Exporter)

// WithNamespace sets the metric name prefix. Empty keeps the default.
func WithNamespace(namespace string) Option {
	return func(e *Exporter) {
		if namespace != "" {
			e.namespace = namespace
		}
	}
}

// WithLogger sets the logger used for skipped-leaf diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRuntimeMetrics additionally registers the Go runtime and process
// collectors on the exporter's registry.
func WithRuntimeMetrics() Option {
	return func(e *Exporter) {
		e.runtime = true
	}
}

// New creates an exporter for the given tree source.
func New(source TreeSource, opts ...Option) (*Exporter, error) {
	if source == nil {
		return nil, errors.WrapInvalid(errors.ErrNilComponent, "Exporter", "New", "validate tree source")
	}

	e := &Exporter{
		source:    source,
		namespace: defaultNamespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.namespace = sanitizeSegment(e.namespace)

	e.scrapesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(e.namespace, "exporter", "scrapes_total"),
		"Number of times the snapshot tree has been collected",
		nil, nil,
	)
	e.leavesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(e.namespace, "exporter", "leaves"),
		"Numeric leaves exported by the current scrape",
		nil, nil,
	)

	e.registry = prometheus.NewRegistry()
	e.registry.MustRegister(e)
	if e.runtime {
		e.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return e, nil
}

// Registry returns the underlying Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns an HTTP handler serving the exporter's registry in
// Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Describe sends no descriptors, making this an unchecked collector.
// The tree shape is only known at scrape time.
func (e *Exporter) Describe(_ chan<- *prometheus.Desc) {}

// Collect walks the current snapshot and emits one const gauge per
// numeric leaf.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	scrapes := e.scrapes.Add(1)

	leaves := 0
	if tree := e.source.Latest(); tree != nil {
		seen := make(map[string]struct{})
		leaves = e.collectTree(ch, tree, e.namespace, "", seen)
	}
	ch <- prometheus.MustNewConstMetric(e.scrapesDesc, prometheus.CounterValue, float64(scrapes))
	ch <- prometheus.MustNewConstMetric(e.leavesDesc, prometheus.GaugeValue, float64(leaves))
}

func (e *Exporter) collectTree(ch chan<- prometheus.Metric, tree *snapshot.Tree, prefix, path string, seen map[string]struct{}) int {
	count := 0
	for _, field := range tree.Fields() {
		name := prefix + "_" + sanitizeSegment(field.Name)
		leafPath := field.Name
		if path != "" {
			leafPath = path + "/" + field.Name
		}

		if sub, ok := field.Item.AsTree(); ok {
			count += e.collectTree(ch, sub, name, leafPath, seen)
			continue
		}
		value, ok := field.Item.Number()
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			e.logger.Debug("Skipping duplicate metric name", "name", name, "path", leafPath)
			continue
		}
		seen[name] = struct{}{}

		desc := prometheus.NewDesc(name, "Snapshot value at "+leafPath, nil, nil)
		metric, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, value)
		if err != nil {
			e.logger.Debug("Skipping unexportable leaf", "name", name, "error", err)
			continue
		}
		ch <- metric
		count++
	}
	return count
}

// sanitizeSegment maps a path segment onto the Prometheus name
// alphabet. Anything outside [a-zA-Z0-9_:] becomes an underscore and a
// leading digit is prefixed with one.
func sanitizeSegment(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for i, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
