package topology

import "dockerdash/internal/domain"

// Direction says who initiated a connection, from the local side's view
type Direction int

const (
	// Outbound means the local side connected out; the local port is ephemeral
	Outbound Direction = iota
	// Inbound means someone connected to a port the local side listens on
	Inbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// ResolveDirection classifies a connection by whether its local port is in
// the local side's listen set
func ResolveDirection(localPort domain.Port, listen []domain.Port) Direction {
	if domain.ContainsPort(listen, localPort) {
		return Inbound
	}
	return Outbound
}

// Orient returns the edge endpoints for a connection between local and remote:
// inbound points remote -> local, outbound points local -> remote
func Orient(local, remote domain.NodeID, dir Direction) (source, target domain.NodeID) {
	if dir == Inbound {
		return remote, local
	}
	return local, remote
}
