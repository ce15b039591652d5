package topology

import (
	"strings"

	"dockerdash/internal/domain"
)

// GatewaySuffix marks a foreign device name as a network gateway label,
// e.g. "bridge (Gateway)"
const GatewaySuffix = " (Gateway)"

// IsGatewayLabel reports whether a resolved foreign device name is a gateway label
func IsGatewayLabel(name string) bool {
	return strings.HasSuffix(name, GatewaySuffix)
}

// Endpoint is a classified node reference with its display label
type Endpoint struct {
	ID    domain.NodeID
	Label string
}

// Classifier decides the node kind of connection endpoints. It needs the
// registry to tell known containers from names nothing in the batch reported.
type Classifier struct {
	reg *Registry
}

// NewClassifier creates a classifier over a merged registry
func NewClassifier(reg *Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Remote classifies the remote endpoint of a connection observed at a node of
// kind origin. Precedence: known container, gateway label, foreign IP.
func (c *Classifier) Remote(conn domain.Connection, origin domain.NodeKind) Endpoint {
	name := conn.ForeignDeviceName()

	switch {
	case name != "" && !IsGatewayLabel(name):
		if _, ok := c.reg.Devices[name]; ok {
			return Endpoint{ID: domain.NewNodeID(domain.NodeKindContainer, name), Label: name}
		}
		if _, ok := c.reg.Processes[name]; ok {
			return Endpoint{ID: domain.NewNodeID(domain.NodeKindProcess, name), Label: name}
		}
		// A name nothing in the batch reported is an unresolved reference
		return foreignEndpoint(conn.ForeignIP)

	case name != "":
		ip := conn.ForeignIP
		if origin == domain.NodeKindProcess {
			ip = gatewayIP(conn.LocalIP, conn.ForeignIP)
		}
		return Endpoint{ID: domain.NewNodeID(domain.NodeKindGatewayIP, ip), Label: name}
	}

	return foreignEndpoint(conn.ForeignIP)
}

func foreignEndpoint(ip string) Endpoint {
	return Endpoint{ID: domain.NewNodeID(domain.NodeKindForeignIP, ip), Label: ip}
}

// gatewayIP picks which side of a host process connection is the docker
// gateway. Host processes see the bridge from its gateway address, so the
// side whose last octet is 1 is taken, local first. This is a heuristic tied
// to the default docker subnetting and misses gateways not ending in .1.
func gatewayIP(localIP, foreignIP string) string {
	if lastOctet(localIP) == "1" {
		return localIP
	}
	if lastOctet(foreignIP) == "1" {
		return foreignIP
	}
	return foreignIP
}

func lastOctet(ip string) string {
	i := strings.LastIndexByte(ip, '.')
	if i < 0 {
		return ""
	}
	return ip[i+1:]
}

// ContainerNode returns the node for a device, grouped under its stack if any
func ContainerNode(dev *domain.Device) domain.Node {
	node := domain.NewNode(domain.NewNodeID(domain.NodeKindContainer, dev.Name), dev.Name)
	if dev.Stack != "" {
		node = node.WithParent(StackNode(dev.Stack).ID)
	}
	return node
}

// StackNode returns the compound node grouping a stack's containers
func StackNode(stack string) domain.Node {
	return domain.NewNode(domain.NewNodeID(domain.NodeKindStack, stack), stack)
}

// ProcessNode returns the node for a host process
func ProcessNode(name string) domain.Node {
	return domain.NewNode(domain.NewNodeID(domain.NodeKindProcess, name), name)
}
