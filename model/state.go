// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"time"
)

// Phase is the provisioning progress of the unit, phases are ordered
type Phase int

const (
	PhaseUninstalled Phase = iota
	PhaseInstalled
	PhaseFstabConfigured
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninstalled:
		return "uninstalled"
	case PhaseInstalled:
		return "installed"
	case PhaseFstabConfigured:
		return "fstab-configured"
	case PhaseReady:
		return "ready"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uninstalled", "":
		*p = PhaseUninstalled
	case "installed":
		*p = PhaseInstalled
	case "fstab-configured":
		*p = PhaseFstabConfigured
	case "ready":
		*p = PhaseReady
	default:
		return fmt.Errorf("invalid phase %q", text)
	}

	return nil
}

// ConsumerState is the connection state of one consumer relation
type ConsumerState string

const (
	ConsumerDisconnected ConsumerState = "disconnected"
	ConsumerConnected    ConsumerState = "connected"
	ConsumerPublished    ConsumerState = "published"
)

// State is the persisted provisioning state of a unit
type State struct {
	Phase      Phase                    `json:"phase" yaml:"phase"`
	Consumers  map[string]ConsumerState `json:"consumers" yaml:"consumers"`
	ConfigHash string                   `json:"config_hash,omitempty" yaml:"config_hash,omitempty"`
	Updated    time.Time                `json:"updated" yaml:"updated"`
}

// NewState creates the state of a freshly deployed unit
func NewState() *State {
	return &State{
		Phase:     PhaseUninstalled,
		Consumers: make(map[string]ConsumerState),
	}
}

// Consumer returns the state of a consumer, unknown consumers are disconnected
func (s *State) Consumer(name string) ConsumerState {
	if s.Consumers == nil {
		return ConsumerDisconnected
	}

	cs, ok := s.Consumers[name]
	if !ok || cs == "" {
		return ConsumerDisconnected
	}

	return cs
}

// Clone creates an independent copy of the state
func (s *State) Clone() *State {
	ns := &State{
		Phase:      s.Phase,
		ConfigHash: s.ConfigHash,
		Updated:    s.Updated,
		Consumers:  make(map[string]ConsumerState, len(s.Consumers)),
	}

	for k, v := range s.Consumers {
		ns.Consumers[k] = v
	}

	return ns
}

// EventKind is something that happened to the unit, either externally triggered or a completed step
type EventKind string

const (
	EventInstall           EventKind = "install"
	EventUpgradeCharm      EventKind = "upgrade-charm"
	EventStart             EventKind = "start"
	EventConfigChanged     EventKind = "config-changed"
	EventUpdateStatus      EventKind = "update-status"
	EventRelationChanged   EventKind = "relation-changed"
	EventRelationDeparted  EventKind = "relation-departed"
	EventPackageInstalled  EventKind = "package-installed"
	EventFstabConfigured   EventKind = "fstab-configured"
	EventMounted           EventKind = "mounted"
	EventConsumerPublished EventKind = "consumer-published"
)

// Event is input to the provisioning state machine
type Event struct {
	Kind     EventKind `json:"kind" yaml:"kind"`
	Consumer string    `json:"consumer,omitempty" yaml:"consumer,omitempty"`
}

func (e Event) String() string {
	if e.Consumer != "" {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Consumer)
	}

	return string(e.Kind)
}

// EffectKind is a provisioning step the driver should perform
type EffectKind string

const (
	EffectEnsureDependency  EffectKind = "ensure-dependency"
	EffectConfigureFstab    EffectKind = "configure-fstab"
	EffectMountAndPrepare   EffectKind = "mount-and-prepare"
	EffectConfigureConsumer EffectKind = "configure-consumer"
	EffectAssessStatus      EffectKind = "assess-status"
)

// Effect is a side effect requested by a state transition
type Effect struct {
	Kind     EffectKind `json:"kind" yaml:"kind"`
	Consumer string     `json:"consumer,omitempty" yaml:"consumer,omitempty"`
}

func (e Effect) String() string {
	if e.Consumer != "" {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Consumer)
	}

	return string(e.Kind)
}
