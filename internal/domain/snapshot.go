package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Snapshot is one point-in-time capture of a host's devices, processes and
// their connections. Snapshots are never modified after collection.
type Snapshot struct {
	ID   string    `json:"id,omitempty"`
	Time time.Time `json:"snapshot_time" validate:"required"`
	Host *Host     `json:"host" validate:"required"`
}

// Host holds everything observed on the machine during one snapshot
type Host struct {
	Name      string             `json:"name,omitempty"`
	OS        string             `json:"os,omitempty"`
	CPU       int                `json:"cpu,omitempty"`
	RAM       int64              `json:"ram,omitempty"`
	Devices   []Device           `json:"devices" validate:"dive"`
	Processes map[string]Process `json:"processes" validate:"dive"`
}

// Device is a container, identified by name
type Device struct {
	Name        string       `json:"name" validate:"required"`
	ID          string       `json:"id"`
	Image       string       `json:"image"`
	Stack       string       `json:"stack,omitempty"`
	PID         int          `json:"pid"`
	IPAddresses []string     `json:"ip_addresses"`
	ListenPorts []Port       `json:"listen_ports"`
	Connections []Connection `json:"connections" validate:"dive"`
}

// Process is a host OS process, identified by name. Name is filled in from
// the snapshot's process map key.
type Process struct {
	Name        string       `json:"name,omitempty"`
	ListenPorts []Port       `json:"listen_ports"`
	Connections []Connection `json:"connections" validate:"dive"`
}

// UnmarshalJSON accepts both "snapshot_time" and "time" for the timestamp
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type snapshotAlias Snapshot
	aux := struct {
		*snapshotAlias
		AltTime *time.Time `json:"time,omitempty"`
	}{snapshotAlias: (*snapshotAlias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.Time.IsZero() && aux.AltTime != nil {
		s.Time = *aux.AltTime
	}
	return nil
}

// Validate checks that the snapshot carries the fields the topology engine
// depends on
func (s *Snapshot) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("malformed snapshot %s: %w", s.ID, err)
	}
	return nil
}
