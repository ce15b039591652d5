// Package collector captures snapshots of a docker host: its running
// containers with the connections seen inside their network namespaces, and
// the host processes holding established TCP sockets.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"dockerdash/internal/domain"
)

// Options selects what a collection run discovers
type Options struct {
	HostProcesses bool
	Containers    bool
	// Sudo prefixes privileged commands with sudo
	Sudo bool
	// HostName is recorded when the docker daemon does not report one
	HostName string
}

// Collector produces snapshots from a Runner and a ContainerSource
type Collector struct {
	runner Runner
	docker ContainerSource
	opts   Options
	now    func() time.Time
}

// New creates a collector. docker may be nil when Options.Containers is off.
func New(runner Runner, docker ContainerSource, opts Options) *Collector {
	return &Collector{
		runner: runner,
		docker: docker,
		opts:   opts,
		now:    time.Now,
	}
}

// Collect captures one snapshot
func (c *Collector) Collect(ctx context.Context) (*domain.Snapshot, error) {
	if !c.opts.HostProcesses && !c.opts.Containers {
		return nil, errors.New("no discovery options enabled")
	}

	host := &domain.Host{
		Name:      c.opts.HostName,
		Devices:   []domain.Device{},
		Processes: map[string]domain.Process{},
	}

	if c.opts.HostProcesses {
		out, err := c.command(ctx, "ss", ssArgs...)
		if err != nil {
			return nil, fmt.Errorf("failed to list host sockets: %w", err)
		}
		host.Processes = ParseSS(out)
	}

	var gateways map[string]string
	if c.opts.Containers {
		if c.docker == nil {
			return nil, errors.New("container discovery enabled without a docker source")
		}
		inv, err := c.docker.Inventory(ctx)
		if err != nil {
			return nil, err
		}
		if inv.HostName != "" {
			host.Name = inv.HostName
		}
		host.OS = inv.HostOS
		host.CPU = inv.HostCPUs
		host.RAM = inv.HostMemory
		gateways = inv.Gateways
		host.Devices = c.devices(ctx, inv)
	}

	tagGatewayTraffic(host.Processes, gateways)

	return &domain.Snapshot{
		Time: c.now().UTC(),
		Host: host,
	}, nil
}

// devices reads each container's connections and resolves their remote ends
func (c *Collector) devices(ctx context.Context, inv *Inventory) []domain.Device {
	devices := make([]domain.Device, 0, len(inv.Containers))
	ipToDevice := make(map[string]string)

	for _, info := range inv.Containers {
		for _, ip := range info.IPAddresses {
			ipToDevice[ip] = info.Name
		}

		dev := domain.Device{
			Name:        info.Name,
			ID:          info.ID,
			Image:       info.Image,
			Stack:       info.Stack,
			PID:         info.PID,
			IPAddresses: append([]string{}, info.IPAddresses...),
			ListenPorts: make([]domain.Port, 0, len(info.ListenPorts)),
			Connections: []domain.Connection{},
		}
		for _, p := range info.ListenPorts {
			dev.ListenPorts = append(dev.ListenPorts, domain.Port(p))
		}

		if info.PID > 0 {
			out, err := c.command(ctx, "nsenter", "-t", strconv.Itoa(info.PID), "-n", "netstat", "-anp")
			if err != nil {
				log.WithError(err).WithField("container", info.Name).Warn("Failed to read container connections")
			} else {
				dev.Connections = ParseNetstat(out)
			}
		}

		devices = append(devices, dev)
	}

	for i := range devices {
		for j := range devices[i].Connections {
			conn := &devices[i].Connections[j]
			conn.SetForeignDevice(resolveForeign(conn.ForeignIP, inv.Gateways, ipToDevice))
		}
	}

	return devices
}

// resolveForeign names the device behind ip. Gateways take precedence over
// container addresses. Wildcard and loopback addresses stay unresolved.
func resolveForeign(ip string, gateways, ipToDevice map[string]string) string {
	switch ip {
	case "::", "0.0.0.0", "127.0.0.1":
		return ""
	}
	if label, ok := gateways[ip]; ok {
		return label
	}
	return ipToDevice[ip]
}

// tagGatewayTraffic marks host process connections made from a docker
// gateway address as talking to that gateway
func tagGatewayTraffic(processes map[string]domain.Process, gateways map[string]string) {
	if len(gateways) == 0 {
		return
	}
	for _, proc := range processes {
		for i := range proc.Connections {
			if label, ok := gateways[proc.Connections[i].LocalIP]; ok {
				proc.Connections[i].SetForeignDevice(label)
			}
		}
	}
}

func (c *Collector) command(ctx context.Context, name string, args ...string) ([]byte, error) {
	if c.opts.Sudo {
		return c.runner.Run(ctx, "sudo", append([]string{name}, args...)...)
	}
	return c.runner.Run(ctx, name, args...)
}
