package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"dockerdash/internal/domain"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.GraphBuilt(domain.NewGraph(), 1, time.Second)
	m.GraphBuildFailed()
	m.SnapshotStored()
	m.CollectorRun(errors.New("boom"))
	m.HTTPRequest("/api/graph", "GET", 200, time.Millisecond)
	m.RegisterClientGauge(func() int { return 1 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}

func TestGraphBuilt(t *testing.T) {
	m := New()
	web := domain.NewNodeID(domain.NodeKindContainer, "web")
	ip := domain.NewNodeID(domain.NodeKindForeignIP, "10.0.0.5")
	g := &domain.Graph{
		Nodes: []domain.Node{domain.NewNode(web, "web"), domain.NewNode(ip, "10.0.0.5")},
		Edges: []domain.Edge{domain.NewEdge(ip, web)},
	}

	m.GraphBuilt(g, 2, 10*time.Millisecond)
	m.GraphBuildFailed()

	if got := testutil.ToFloat64(m.graphBuilds.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok builds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.graphBuilds.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("failed builds = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.snapshotsSkipped); got != 2 {
		t.Errorf("skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.graphNodes.WithLabelValues("container")); got != 1 {
		t.Errorf("container nodes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.graphEdges); got != 1 {
		t.Errorf("edges = %v, want 1", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.SnapshotStored()
	m.CollectorRun(nil)
	m.HTTPRequest("/api/graph", "GET", 200, time.Millisecond)
	m.RegisterClientGauge(func() int { return 3 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"dockerdash_snapshots_stored_total 1",
		`dockerdash_collector_runs_total{result="ok"} 1`,
		`dockerdash_http_requests_total{code="200",method="GET",path="/api/graph"} 1`,
		"dockerdash_sse_clients 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
