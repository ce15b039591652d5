package topology

import (
	"testing"

	"dockerdash/internal/domain"
)

func classifierFixture() *Classifier {
	reg, _ := Aggregate([]domain.Snapshot{
		snapshot(0, []domain.Device{
			{Name: "api", Stack: "shop"},
			{Name: "db"},
		}, map[string]domain.Process{
			"dockerd": {},
		}),
	})
	return NewClassifier(reg)
}

func TestClassifierRemote(t *testing.T) {
	c := classifierFixture()

	tests := []struct {
		name      string
		conn      domain.Connection
		origin    domain.NodeKind
		wantID    domain.NodeID
		wantLabel string
	}{
		{
			name:      "known container",
			conn:      conn("172.18.0.2", 40000, "172.18.0.3", 5432, strp("db")),
			origin:    domain.NodeKindContainer,
			wantID:    nodeID(domain.NodeKindContainer, "db"),
			wantLabel: "db",
		},
		{
			name:      "known container seen from a process",
			conn:      conn("172.18.0.1", 40000, "172.18.0.4", 9000, strp("api")),
			origin:    domain.NodeKindProcess,
			wantID:    nodeID(domain.NodeKindContainer, "api"),
			wantLabel: "api",
		},
		{
			name:      "known process name",
			conn:      conn("172.18.0.2", 40000, "10.0.0.1", 2375, strp("dockerd")),
			origin:    domain.NodeKindContainer,
			wantID:    nodeID(domain.NodeKindProcess, "dockerd"),
			wantLabel: "dockerd",
		},
		{
			name:      "unknown device name is unresolved",
			conn:      conn("172.18.0.2", 40000, "172.18.0.9", 80, strp("ghost")),
			origin:    domain.NodeKindContainer,
			wantID:    nodeID(domain.NodeKindForeignIP, "172.18.0.9"),
			wantLabel: "172.18.0.9",
		},
		{
			name:      "gateway from a container keys on foreign ip",
			conn:      conn("172.18.0.2", 40000, "172.18.0.1", 53, strp("shop_default (Gateway)")),
			origin:    domain.NodeKindContainer,
			wantID:    nodeID(domain.NodeKindGatewayIP, "172.18.0.1"),
			wantLabel: "shop_default (Gateway)",
		},
		{
			name:      "gateway from a process prefers local .1",
			conn:      conn("172.18.0.1", 5432, "172.18.0.2", 40000, strp("shop_default (Gateway)")),
			origin:    domain.NodeKindProcess,
			wantID:    nodeID(domain.NodeKindGatewayIP, "172.18.0.1"),
			wantLabel: "shop_default (Gateway)",
		},
		{
			name:      "gateway from a process falls back to foreign .1",
			conn:      conn("172.18.0.5", 40000, "172.18.0.1", 80, strp("shop_default (Gateway)")),
			origin:    domain.NodeKindProcess,
			wantID:    nodeID(domain.NodeKindGatewayIP, "172.18.0.1"),
			wantLabel: "shop_default (Gateway)",
		},
		{
			name:      "gateway heuristic does not match .11",
			conn:      conn("172.18.0.11", 40000, "172.18.0.254", 80, strp("lan (Gateway)")),
			origin:    domain.NodeKindProcess,
			wantID:    nodeID(domain.NodeKindGatewayIP, "172.18.0.254"),
			wantLabel: "lan (Gateway)",
		},
		{
			name:      "unresolved address",
			conn:      conn("172.18.0.2", 40000, "8.8.8.8", 443, nil),
			origin:    domain.NodeKindContainer,
			wantID:    nodeID(domain.NodeKindForeignIP, "8.8.8.8"),
			wantLabel: "8.8.8.8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Remote(tt.conn, tt.origin)
			if got.ID != tt.wantID {
				t.Errorf("ID = %s, want %s", got.ID, tt.wantID)
			}
			if got.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got.Label, tt.wantLabel)
			}
		})
	}
}

func TestIsGatewayLabel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"bridge (Gateway)", true},
		{"shop_default (Gateway)", true},
		{"bridge", false},
		{"(Gateway) bridge", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsGatewayLabel(tt.name); got != tt.want {
			t.Errorf("IsGatewayLabel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNodeIdentitiesAreDisjointAcrossKinds(t *testing.T) {
	container := ContainerNode(&domain.Device{Name: "api"})
	process := ProcessNode("api")
	stack := StackNode("api")

	if container.ID == process.ID || container.ID == stack.ID || process.ID == stack.ID {
		t.Errorf("identities collide: %s %s %s", container.ID, process.ID, stack.ID)
	}
	if container.ID.String() == process.ID.String() {
		t.Errorf("wire identities collide: %s", container.ID)
	}
}

func TestContainerNodeParent(t *testing.T) {
	grouped := ContainerNode(&domain.Device{Name: "a", Stack: "payments"})
	if grouped.Parent == nil || *grouped.Parent != nodeID(domain.NodeKindStack, "payments") {
		t.Errorf("Parent = %v, want s__payments", grouped.Parent)
	}

	loose := ContainerNode(&domain.Device{Name: "b"})
	if loose.Parent != nil {
		t.Errorf("Parent = %v, want nil", loose.Parent)
	}
}
