// Package prom implements the observability hook interfaces with Prometheus
// collectors.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/riskflow/pkg/observability"
)

const namespace = "riskflow"

// Metrics holds every collector. A single value satisfies all four hook
// interfaces.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	graphSize     *prometheus.HistogramVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	mutations    *prometheus.CounterVec
	riskDuration prometheus.Histogram
	pathCount    prometheus.Gauge

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_errors_total",
			Help:      "Pipeline stage failures",
		}, []string{"stage"}),
		graphSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_graph_size",
			Help:      "Vertices and registered paths of analyzed graphs",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"kind"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_mutations_total",
			Help:      "Live graph mutations by kind",
		}, []string{"op"}),
		riskDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_risk_duration_seconds",
			Help:      "Duration of full risk evaluations on live graphs",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		pathCount: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_registered_paths",
			Help:      "Registered paths of the most recently evaluated graph",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "API requests currently being served",
		}),
	}
}

// Install registers m as every global hook.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetGraphHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) complete(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

// Pipeline hooks.

func (m *Metrics) OnBuildStart(_ context.Context, vertices, _ int) {
	m.graphSize.WithLabelValues("vertices").Observe(float64(vertices))
}

func (m *Metrics) OnBuildComplete(_ context.Context, paths int, d time.Duration, err error) {
	m.graphSize.WithLabelValues("paths").Observe(float64(paths))
	m.complete("build", d, err)
}

func (m *Metrics) OnAnalyzeStart(context.Context, int) {}

func (m *Metrics) OnAnalyzeComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.complete("analyze", d, err)
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.complete("render", d, err)
}

// Cache hooks.

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// Graph hooks. Session IDs are deliberately not used as labels.

func (m *Metrics) OnVertexAdded(context.Context, string, string) {
	m.mutations.WithLabelValues("vertex_added").Inc()
}

func (m *Metrics) OnVertexRemoved(context.Context, string, string) {
	m.mutations.WithLabelValues("vertex_removed").Inc()
}

func (m *Metrics) OnEdgeSet(context.Context, string, string, string, float64) {
	m.mutations.WithLabelValues("edge_set").Inc()
}

func (m *Metrics) OnEdgeCleared(context.Context, string, string, string) {
	m.mutations.WithLabelValues("edge_cleared").Inc()
}

func (m *Metrics) OnRiskComputed(_ context.Context, _ string, _, paths int, d time.Duration) {
	m.riskDuration.Observe(d.Seconds())
	m.pathCount.Set(float64(paths))
}

// HTTP hooks.

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.GraphHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
