// Package metrics exposes prometheus collectors for graph builds, snapshot
// ingestion, collection runs and the HTTP API.
//
// All recording methods are safe to call on a nil *Metrics, so components can
// be constructed without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dockerdash/internal/domain"
)

const (
	namespace = "dockerdash"

	LabelResult = "result"
	LabelKind   = "kind"
	LabelPath   = "path"
	LabelMethod = "method"
	LabelCode   = "code"

	ResultOK    = "ok"
	ResultError = "error"
)

var durationBuckets = []float64{.005, .01, .05, .1, .25, .5, 1, 5}

// Metrics holds the collectors and the registry they are exposed from
type Metrics struct {
	registry *prometheus.Registry

	graphBuilds       *prometheus.CounterVec
	graphBuildSeconds prometheus.Histogram
	graphNodes        *prometheus.GaugeVec
	graphEdges        prometheus.Gauge
	snapshotsSkipped  prometheus.Counter
	snapshotsStored   prometheus.Counter
	collectorRuns     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		graphBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Number of graph builds by result.",
		}, []string{LabelResult}),

		graphBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Duration of graph builds.",
			Buckets:   durationBuckets,
		}),

		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Nodes in the current graph by kind.",
		}, []string{LabelKind}),

		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edges in the current graph.",
		}),

		snapshotsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "skipped_total",
			Help:      "Malformed snapshots skipped during graph builds.",
		}),

		snapshotsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "stored_total",
			Help:      "Snapshots written to the store.",
		}),

		collectorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "runs_total",
			Help:      "Collection runs by result.",
		}, []string{LabelResult}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by path, method and status code.",
		}, []string{LabelPath, LabelMethod, LabelCode}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_time_seconds",
			Help:      "Duration of HTTP responses.",
			Buckets:   durationBuckets,
		}, []string{LabelPath, LabelMethod}),
	}

	m.registry.MustRegister(
		m.graphBuilds,
		m.graphBuildSeconds,
		m.graphNodes,
		m.graphEdges,
		m.snapshotsSkipped,
		m.snapshotsStored,
		m.collectorRuns,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterClientGauge exposes the live SSE client count
func (m *Metrics) RegisterClientGauge(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sse",
		Name:      "clients",
		Help:      "Connected SSE clients.",
	}, func() float64 { return float64(count()) }))
}

// GraphBuilt records a successful build and the shape of the resulting graph
func (m *Metrics) GraphBuilt(g *domain.Graph, skipped int, took time.Duration) {
	if m == nil {
		return
	}
	m.graphBuilds.WithLabelValues(ResultOK).Inc()
	m.graphBuildSeconds.Observe(took.Seconds())
	m.snapshotsSkipped.Add(float64(skipped))

	m.graphNodes.Reset()
	for kind, n := range g.CountByKind() {
		m.graphNodes.WithLabelValues(string(kind)).Set(float64(n))
	}
	m.graphEdges.Set(float64(len(g.Edges)))
}

// GraphBuildFailed records a build that produced no graph
func (m *Metrics) GraphBuildFailed() {
	if m == nil {
		return
	}
	m.graphBuilds.WithLabelValues(ResultError).Inc()
}

// SnapshotStored records a snapshot written to the store
func (m *Metrics) SnapshotStored() {
	if m == nil {
		return
	}
	m.snapshotsStored.Inc()
}

// CollectorRun records the outcome of one collection run
func (m *Metrics) CollectorRun(err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.collectorRuns.WithLabelValues(result).Inc()
}

// HTTPRequest records one served request
func (m *Metrics) HTTPRequest(path, method string, code int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(took.Seconds())
}
