// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
)

const StepEventProtocol = "io.choria.openstack_nfs.v1.step.event"

// StepEvent records the outcome of a single provisioning step
type StepEvent struct {
	Protocol  string        `json:"protocol" yaml:"protocol"`
	EventID   string        `json:"event_id" yaml:"event_id"`
	TimeStamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Unit      string        `json:"unit,omitempty" yaml:"unit,omitempty"`
	Hook      string        `json:"hook,omitempty" yaml:"hook,omitempty"`
	Step      EffectKind    `json:"step" yaml:"step"`
	Consumer  string        `json:"consumer,omitempty" yaml:"consumer,omitempty"`
	Phase     Phase         `json:"phase" yaml:"phase"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Status    Status        `json:"status,omitempty" yaml:"status,omitempty"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Changed   bool          `json:"changed" yaml:"changed"`
	Failed    bool          `json:"failed" yaml:"failed"`
	Skipped   bool          `json:"skipped" yaml:"skipped"`
}

// StateStore persists provisioning state and step events between hook invocations
type StateStore interface {
	Load() (*State, error)
	Save(*State) error
	RecordEvent(*StepEvent) error
	Events(limit int) ([]*StepEvent, error)
}

// EventPublisher sends step events to an external observer
type EventPublisher interface {
	Publish(ctx context.Context, event *StepEvent) error
}

func NewStepEvent(step EffectKind, consumer string) *StepEvent {
	return &StepEvent{
		Protocol:  StepEventProtocol,
		EventID:   ksuid.New().String(),
		TimeStamp: time.Now().UTC(),
		Step:      step,
		Consumer:  consumer,
	}
}

func (t *StepEvent) name() string {
	if t.Consumer != "" {
		return fmt.Sprintf("%s#%s", t.Step, t.Consumer)
	}

	return string(t.Step)
}

func (t *StepEvent) LogStatus(log Logger) {
	args := []any{
		"phase", t.Phase.String(),
		"runtime", t.Duration.Truncate(time.Millisecond),
	}

	if t.Message != "" {
		args = append(args, "status", t.Status, "message", t.Message)
	}

	switch {
	case t.Failed:
		log.Error(fmt.Sprintf("%s failed", t.name()), append(args, "error", t.Error)...)
	case t.Skipped:
		log.Info(fmt.Sprintf("%s skipped", t.name()), args...)
	case t.Changed:
		log.Warn(fmt.Sprintf("%s changed", t.name()), args...)
	default:
		log.Info(fmt.Sprintf("%s stable", t.name()), args...)
	}
}

func (t *StepEvent) String() string {
	switch {
	case t.Failed:
		return fmt.Sprintf("%s failed phase=%s runtime=%v error=%v", t.name(), t.Phase, t.Duration, t.Error)
	case t.Skipped:
		return fmt.Sprintf("%s skipped phase=%s runtime=%v", t.name(), t.Phase, t.Duration)
	case t.Changed:
		return fmt.Sprintf("%s changed phase=%s runtime=%v", t.name(), t.Phase, t.Duration)
	default:
		return fmt.Sprintf("%s phase=%s runtime=%v", t.name(), t.Phase, t.Duration)
	}
}
