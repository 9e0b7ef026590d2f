// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"sync"
	"time"

	"github.com/choria-io/openstack-nfs/model"
)

// MemoryStore keeps state and events in memory, used for dry runs and tests
type MemoryStore struct {
	state  *model.State
	events []*model.StepEvent
	mu     sync.Mutex
}

var _ model.StateStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store holding initial, nil means a fresh unit
func NewMemoryStore(initial *model.State) *MemoryStore {
	if initial == nil {
		initial = model.NewState()
	}

	return &MemoryStore{state: initial.Clone()}
}

func (s *MemoryStore) Load() (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone(), nil
}

func (s *MemoryStore) Save(state *model.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.Updated = time.Now().UTC()
	s.state = state.Clone()

	return nil
}

func (s *MemoryStore) RecordEvent(event *model.StepEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updateMetrics(event)

	s.events = append(s.events, event)

	return nil
}

func (s *MemoryStore) Events(limit int) ([]*model.StepEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	res := make([]*model.StepEvent, len(events))
	copy(res, events)

	return res, nil
}
