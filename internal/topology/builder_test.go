package topology

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dockerdash/internal/domain"
)

// assertWellFormed checks the invariants every built graph must hold
func assertWellFormed(t *testing.T, g *domain.Graph) {
	t.Helper()

	seenNodes := make(map[domain.NodeID]bool)
	for _, n := range g.Nodes {
		if seenNodes[n.ID] {
			t.Errorf("duplicate node %s", n.ID)
		}
		seenNodes[n.ID] = true
	}

	seenEdges := make(map[domain.EdgeKey]bool)
	for _, e := range g.Edges {
		if seenEdges[e.ID] {
			t.Errorf("duplicate edge key %s", e.ID)
		}
		seenEdges[e.ID] = true
		if !seenNodes[e.Source] || !seenNodes[e.Target] {
			t.Errorf("edge %s references missing node", e.ID)
		}
	}

	if dangling := g.DanglingParents(); len(dangling) != 0 {
		t.Errorf("dangling parents: %v", dangling)
	}
}

func TestBuildGraphDuplicateObservationsYieldOneEdge(t *testing.T) {
	c := domain.Connection{Proto: "tcp", LocalPort: 80, ForeignIP: "10.0.0.5"}
	snapshots := []domain.Snapshot{
		snapshot(time.Minute, []domain.Device{{Name: "web", ListenPorts: ports(80), Connections: []domain.Connection{c}}}, nil),
		snapshot(0, []domain.Device{{Name: "web", ListenPorts: ports(80), Connections: []domain.Connection{c}}}, nil),
	}

	reg, _ := Aggregate(snapshots)
	if got := len(reg.Devices["web"].Connections); got != 1 {
		t.Fatalf("web connections = %d, want 1", got)
	}

	g := BuildGraph(reg, Options{})
	assertWellFormed(t, g)

	if len(g.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(g.Edges))
	}
	want := domain.NewEdge(nodeID(domain.NodeKindForeignIP, "10.0.0.5"), nodeID(domain.NodeKindContainer, "web"))
	if diff := cmp.Diff(want, g.Edges[0]); diff != "" {
		t.Errorf("edge mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGraphOutboundProcess(t *testing.T) {
	reg, _ := Aggregate([]domain.Snapshot{
		snapshot(0, nil, map[string]domain.Process{
			"nginx": {ListenPorts: ports(443), Connections: []domain.Connection{conn("192.168.1.10", 51000, "8.8.8.8", 53, nil)}},
		}),
	})

	g := BuildGraph(reg, Options{})
	assertWellFormed(t, g)

	edge, ok := findEdge(g, nodeID(domain.NodeKindProcess, "nginx"), nodeID(domain.NodeKindForeignIP, "8.8.8.8"))
	if !ok {
		t.Fatal("expected edge between nginx and 8.8.8.8")
	}
	if edge.Source != nodeID(domain.NodeKindProcess, "nginx") {
		t.Errorf("Source = %s, want p__nginx", edge.Source)
	}
}

func TestBuildGraphStackBeforeChild(t *testing.T) {
	reg, _ := Aggregate([]domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "b", Stack: "payments", Connections: []domain.Connection{conn("172.18.0.3", 40000, "172.18.0.2", 80, strp("a"))}},
			{Name: "a", Stack: "payments", ListenPorts: ports(80)},
			{Name: "solo"},
		}, nil),
	})

	g := BuildGraph(reg, Options{})
	assertWellFormed(t, g)

	stackID := nodeID(domain.NodeKindStack, "payments")
	stackIndex := -1
	stacks := 0
	for i, n := range g.Nodes {
		if n.ID == stackID {
			stackIndex = i
			stacks++
		}
	}
	if stacks != 1 {
		t.Fatalf("stack nodes = %d, want 1", stacks)
	}
	for i, n := range g.Nodes {
		if n.Parent != nil && *n.Parent == stackID && i < stackIndex {
			t.Errorf("child %s declared before its stack", n.ID)
		}
	}

	solo, ok := g.Node(nodeID(domain.NodeKindContainer, "solo"))
	if !ok {
		t.Fatal("isolated container solo must be kept")
	}
	if solo.Parent != nil {
		t.Errorf("solo.Parent = %v, want nil", solo.Parent)
	}
}

func TestBuildGraphEdgeObservedFromBothSides(t *testing.T) {
	// api connects out to db; db sees the same association inbound
	reg, _ := Aggregate([]domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "api", Connections: []domain.Connection{conn("172.18.0.4", 41000, "172.18.0.5", 5432, strp("db"))}},
			{Name: "db", ListenPorts: ports(5432), Connections: []domain.Connection{conn("172.18.0.5", 5432, "172.18.0.4", 41000, strp("api"))}},
		}, nil),
	})

	g := BuildGraph(reg, Options{})
	assertWellFormed(t, g)

	if len(g.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(g.Edges))
	}
	e := g.Edges[0]
	if e.Source != nodeID(domain.NodeKindContainer, "api") || e.Target != nodeID(domain.NodeKindContainer, "db") {
		t.Errorf("edge = %s -> %s, want c__api -> c__db", e.Source, e.Target)
	}
}

func TestBuildGraphGatewayCollapsesByIP(t *testing.T) {
	reg, _ := Aggregate([]domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "a", Connections: []domain.Connection{conn("172.18.0.2", 40000, "172.18.0.1", 53, strp("shop (Gateway)"))}},
			{Name: "b", Connections: []domain.Connection{conn("172.18.0.3", 40001, "172.18.0.1", 53, strp("shop (Gateway)"))}},
		}, map[string]domain.Process{
			"postgres": {ListenPorts: ports(5432), Connections: []domain.Connection{conn("172.18.0.1", 5432, "172.18.0.2", 40002, strp("shop (Gateway)"))}},
		}),
	})

	g := BuildGraph(reg, Options{})
	assertWellFormed(t, g)

	if got := g.CountByKind()[domain.NodeKindGatewayIP]; got != 1 {
		t.Errorf("gateway nodes = %d, want 1", got)
	}
	gw, _ := g.Node(nodeID(domain.NodeKindGatewayIP, "172.18.0.1"))
	if gw.Label != "shop (Gateway)" {
		t.Errorf("gateway label = %q", gw.Label)
	}
	if _, ok := g.Node(nodeID(domain.NodeKindContainer, "shop (Gateway)")); ok {
		t.Error("gateway label must never become a container node")
	}
}

func TestBuilderFirstNodeWins(t *testing.T) {
	b := NewBuilder(NewRegistry(), Options{})
	id := nodeID(domain.NodeKindForeignIP, "10.0.0.1")

	if !b.AddNode(domain.NewNode(id, "first")) {
		t.Fatal("first AddNode should add")
	}
	if b.AddNode(domain.NewNode(id, "second")) {
		t.Error("second AddNode should be absorbed")
	}

	g := b.Graph()
	if len(g.Nodes) != 1 || g.Nodes[0].Label != "first" {
		t.Errorf("nodes = %+v", g.Nodes)
	}
}

func TestBuilderDropsRepeatedEdges(t *testing.T) {
	b := NewBuilder(NewRegistry(), Options{})
	x := nodeID(domain.NodeKindContainer, "x")
	y := nodeID(domain.NodeKindContainer, "y")

	if !b.AddEdge(x, y) {
		t.Fatal("first AddEdge should add")
	}
	if b.AddEdge(x, y) {
		t.Error("repeated edge should be dropped")
	}
	if b.AddEdge(y, x) {
		t.Error("reverse observation shares the canonical key and should be dropped")
	}
	if got := b.Graph().Edges; len(got) != 1 || got[0].Source != x {
		t.Errorf("edges = %+v", got)
	}
}

func TestBuildGraphIsDeterministic(t *testing.T) {
	snapshots := []domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "web", Stack: "shop", ListenPorts: ports(80), Connections: []domain.Connection{
				conn("172.18.0.2", 80, "10.0.0.5", 51000, nil),
				conn("172.18.0.2", 40000, "172.18.0.3", 5432, strp("db")),
			}},
			{Name: "db", Stack: "shop", ListenPorts: ports(5432)},
		}, map[string]domain.Process{
			"sshd":  {ListenPorts: ports(22), Connections: []domain.Connection{conn("10.0.0.2", 22, "10.0.0.9", 50000, nil)}},
			"nginx": {Connections: []domain.Connection{conn("10.0.0.2", 50001, "1.1.1.1", 443, nil)}},
		}),
	}

	reg1, _ := Aggregate(snapshots)
	reg2, _ := Aggregate(snapshots)
	g1 := BuildGraph(reg1, Options{})
	g2 := BuildGraph(reg2, Options{})

	assertWellFormed(t, g1)
	if diff := cmp.Diff(g1, g2); diff != "" {
		t.Errorf("builds differ (-first +second):\n%s", diff)
	}
}

func TestBuildGraphMaskingIsLabelOnly(t *testing.T) {
	snapshots := []domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "web", ListenPorts: ports(80), Connections: []domain.Connection{
				conn("172.18.0.2", 80, "203.0.113.42", 51000, nil),
				conn("172.18.0.2", 40000, "172.18.0.1", 53, strp("bridge (Gateway)")),
			}},
		}, map[string]domain.Process{
			"curl": {Connections: []domain.Connection{conn("10.0.0.2", 50001, "2001:db8::1", 443, nil)}},
		}),
	}

	reg, _ := Aggregate(snapshots)
	plain := BuildGraph(reg, Options{})
	masked := BuildGraph(reg, Options{MaskIPLabels: true})

	if len(plain.Nodes) != len(masked.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(plain.Nodes), len(masked.Nodes))
	}
	for i := range plain.Nodes {
		if plain.Nodes[i].ID != masked.Nodes[i].ID {
			t.Errorf("node %d identity changed: %s -> %s", i, plain.Nodes[i].ID, masked.Nodes[i].ID)
		}
	}
	if diff := cmp.Diff(plain.Edges, masked.Edges); diff != "" {
		t.Errorf("edges changed by masking (-plain +masked):\n%s", diff)
	}

	labels := make(map[string]string)
	for _, n := range masked.Nodes {
		labels[n.ID.String()] = n.Label
	}
	wantLabels := map[string]string{
		"i__203.0.113.42": "203.0.113.X",
		"g__172.18.0.1":   "bridge (Gateway)",
		"i__2001:db8::1":  "2001:db8::1",
		"c__web":          "web",
	}
	for id, want := range wantLabels {
		if got := labels[id]; got != want {
			t.Errorf("label[%s] = %q, want %q", id, got, want)
		}
	}
}
