package prom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/riskflow/pkg/observability"
)

func TestCacheCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnCacheHit(ctx, "risk")
	m.OnCacheHit(ctx, "risk")
	m.OnCacheMiss(ctx, "artifact")
	m.OnCacheSet(ctx, "artifact", 512)

	tests := []struct {
		keyType, result string
		want            float64
	}{
		{"risk", "hit", 2},
		{"artifact", "miss", 1},
		{"artifact", "set", 1},
		{"risk", "miss", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.cacheOps.WithLabelValues(tt.keyType, tt.result))
		if got != tt.want {
			t.Errorf("cache_operations_total{%s,%s} = %v, want %v", tt.keyType, tt.result, got, tt.want)
		}
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("artifact")); got != 512 {
		t.Errorf("cache_written_bytes_total = %v, want 512", got)
	}
}

func TestGraphMutations(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnVertexAdded(ctx, "s", "a")
	m.OnVertexAdded(ctx, "s", "b")
	m.OnEdgeSet(ctx, "s", "a", "b", 0.5)
	m.OnEdgeCleared(ctx, "s", "a", "b")
	m.OnVertexRemoved(ctx, "s", "a")
	m.OnRiskComputed(ctx, "s", 1, 7, time.Millisecond)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("vertex_added")); got != 2 {
		t.Errorf("vertex_added = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pathCount); got != 7 {
		t.Errorf("graph_registered_paths = %v, want 7", got)
	}
}

func TestStageErrors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnAnalyzeComplete(ctx, 3, time.Millisecond, nil)
	m.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("render")); got != 1 {
		t.Errorf("render errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("analyze")); got != 0 {
		t.Errorf("analyze errors = %v, want 0", got)
	}
}

func TestHTTPInFlight(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnRequest(ctx, "GET", "/v1/health")
	if got := testutil.ToFloat64(m.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnResponse(ctx, "GET", "/v1/health", 200, time.Millisecond)
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/health", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	m := New(prometheus.NewRegistry())
	m.Install()
	if observability.Cache() != observability.CacheHooks(m) {
		t.Error("Install did not register cache hooks")
	}
	if observability.Graph() != observability.GraphHooks(m) {
		t.Error("Install did not register graph hooks")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	New(reg)
}
