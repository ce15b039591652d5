package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	log "github.com/sirupsen/logrus"

	"dockerdash/internal/topology"
)

// stackLabel is the label docker compose stamps with the project name
const stackLabel = "com.docker.compose.project"

// ContainerInfo is what the collector needs to know about one running container
type ContainerInfo struct {
	Name        string
	ID          string
	Image       string
	Stack       string
	PID         int
	IPAddresses []string
	ListenPorts []int
}

// Inventory is a point-in-time view of the docker daemon
type Inventory struct {
	HostName   string
	HostOS     string
	HostCPUs   int
	HostMemory int64
	Containers []ContainerInfo
	// Gateways maps a network gateway IP to its "<network> (Gateway)" label
	Gateways map[string]string
}

// ContainerSource lists running containers and network gateways
type ContainerSource interface {
	Inventory(ctx context.Context) (*Inventory, error)
}

// DockerInspector reads the inventory from a docker daemon
type DockerInspector struct {
	cli *client.Client
}

// NewDockerInspector connects using the standard DOCKER_HOST environment
func NewDockerInspector() (*DockerInspector, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerInspector{cli: cli}, nil
}

// Close releases the docker client
func (d *DockerInspector) Close() error {
	return d.cli.Close()
}

// Inventory implements ContainerSource
func (d *DockerInspector) Inventory(ctx context.Context) (*Inventory, error) {
	inv := &Inventory{Gateways: make(map[string]string)}

	if info, err := d.cli.Info(ctx); err == nil {
		inv.HostName = info.Name
		inv.HostOS = info.OperatingSystem
		inv.HostCPUs = info.NCPU
		inv.HostMemory = info.MemTotal
	} else {
		log.WithError(err).Debug("docker info unavailable")
	}

	networks, err := d.cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	for _, n := range networks {
		if len(n.IPAM.Config) == 0 {
			continue
		}
		if gw := n.IPAM.Config[0].Gateway; gw != "" {
			inv.Gateways[gw] = GatewayLabel(n.Name)
		}
	}

	summaries, err := d.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	for _, s := range summaries {
		details, err := d.cli.ContainerInspect(ctx, s.ID)
		if err != nil {
			log.WithError(err).WithField("container", s.ID).Warn("Failed to inspect container")
			continue
		}

		info := ContainerInfo{
			Name: strings.TrimPrefix(details.Name, "/"),
			ID:   shortID(details.ID),
		}
		if details.Config != nil {
			info.Image = details.Config.Image
			info.Stack = details.Config.Labels[stackLabel]
		}
		if details.State != nil {
			info.PID = details.State.Pid
		}
		if details.NetworkSettings != nil {
			for port := range details.NetworkSettings.Ports {
				info.ListenPorts = append(info.ListenPorts, port.Int())
			}
			sort.Ints(info.ListenPorts)

			names := make([]string, 0, len(details.NetworkSettings.Networks))
			for name := range details.NetworkSettings.Networks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if ep := details.NetworkSettings.Networks[name]; ep != nil && ep.IPAddress != "" {
					info.IPAddresses = append(info.IPAddresses, ep.IPAddress)
				}
			}
		}

		inv.Containers = append(inv.Containers, info)
	}

	return inv, nil
}

// GatewayLabel is the device name given to a docker network's gateway
func GatewayLabel(network string) string {
	return network + topology.GatewaySuffix
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
