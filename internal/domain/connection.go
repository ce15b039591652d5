package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Port is a TCP/UDP port number.
// It decodes from JSON numbers and from numeric strings, since netstat based
// collectors historically stored ports as text.
type Port int

// UnmarshalJSON implements json.Unmarshaler
func (p *Port) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*p = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" || s == "*" {
			*p = 0
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid port %s: %w", string(data), err)
	}
	*p = Port(n)
	return nil
}

// ContainsPort reports whether p is in ports
func ContainsPort(ports []Port, p Port) bool {
	for _, lp := range ports {
		if lp == p {
			return true
		}
	}
	return false
}

// Connection is one observed TCP/UDP association, seen from the local side
type Connection struct {
	Proto          string `json:"proto"`
	LocalAddress   string `json:"local_address"`
	LocalIP        string `json:"local_ip"`
	LocalPort      Port   `json:"local_port"`
	ForeignAddress string `json:"foreign_address"`
	ForeignIP      string `json:"foreign_ip" validate:"required"`
	ForeignPort    Port   `json:"foreign_port"`

	// State and Program are only reported by netstat inside containers
	State   string `json:"state,omitempty"`
	Program string `json:"pid_program_name,omitempty"`

	// ForeignDevice is the resolved container name or gateway label of the
	// remote endpoint. nil means the remote is an unrecognized address.
	ForeignDevice *string `json:"foreign_device"`
}

// ForeignDeviceName returns the resolved remote name, or "" when unresolved
func (c *Connection) ForeignDeviceName() string {
	if c.ForeignDevice == nil {
		return ""
	}
	return *c.ForeignDevice
}

// SetForeignDevice sets the resolved remote name. An empty name clears it.
func (c *Connection) SetForeignDevice(name string) {
	if name == "" {
		c.ForeignDevice = nil
		return
	}
	c.ForeignDevice = &name
}
