package topology

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dockerdash/internal/domain"
)

func TestEngineBuild(t *testing.T) {
	src := &fakeSource{snapshots: []domain.Snapshot{
		snapshot(time.Minute, []domain.Device{
			{Name: "web", Stack: "shop", ListenPorts: ports(80), Connections: []domain.Connection{conn("172.18.0.2", 80, "10.0.0.5", 51000, nil)}},
		}, nil),
		{ID: "broken"},
		snapshot(0, []domain.Device{{Name: "db", Stack: "shop"}}, nil),
	}}

	res, err := NewEngine(src).Build(context.Background(), 100, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if res.Snapshots != 3 || res.Skipped != 1 {
		t.Errorf("Snapshots/Skipped = %d/%d, want 3/1", res.Snapshots, res.Skipped)
	}
	if !cmp.Equal(src.limits, []int{100}) {
		t.Errorf("limits = %v, want [100]", src.limits)
	}

	counts := res.Graph.CountByKind()
	want := map[domain.NodeKind]int{
		domain.NodeKindStack:     1,
		domain.NodeKindContainer: 2,
		domain.NodeKindForeignIP: 1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("node counts mismatch (-want +got):\n%s", diff)
	}

	if detail := res.Lookup("s__shop", nil); detail.Stack == nil || detail.Stack.Count != 2 {
		t.Errorf("Lookup(s__shop) = %+v", detail)
	}
}

func TestEngineBuildHonorsLimit(t *testing.T) {
	src := &fakeSource{snapshots: []domain.Snapshot{
		snapshot(time.Minute, []domain.Device{{Name: "new"}}, nil),
		snapshot(0, []domain.Device{{Name: "old"}}, nil),
	}}

	res, err := NewEngine(src).Build(context.Background(), 1, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := res.Registry.Devices["old"]; ok {
		t.Error("old should fall outside the window")
	}
	if _, ok := res.Registry.Devices["new"]; !ok {
		t.Error("new should be inside the window")
	}
}

func TestEngineBuildSurfacesSourceErrors(t *testing.T) {
	unavailable := errors.New("database is locked")
	src := &fakeSource{err: unavailable}

	res, err := NewEngine(src).Build(context.Background(), 10, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, unavailable) {
		t.Errorf("error %v does not wrap source error", err)
	}
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}
}

func TestEngineBuildTwiceYieldsSameSets(t *testing.T) {
	src := &fakeSource{snapshots: []domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "api", ListenPorts: ports(9000), Connections: []domain.Connection{
				conn("172.18.0.4", 9000, "172.18.0.2", 40000, strp("web")),
				conn("172.18.0.4", 9000, "172.18.0.2", 40000, strp("web")),
			}},
			{Name: "web"},
		}, nil),
	}}

	engine := NewEngine(src)
	first, err := engine.Build(context.Background(), 0, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := engine.Build(context.Background(), 0, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if diff := cmp.Diff(first.Graph, second.Graph); diff != "" {
		t.Errorf("graphs differ (-first +second):\n%s", diff)
	}
}
