// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/choria-io/openstack-nfs/model"
)

const (
	stateFile   = "state.json"
	eventsDir   = "events"
	eventSuffix = ".event"

	// DefaultRetainEvents is how many step events are kept on disk
	DefaultRetainEvents = 200
)

// DirectoryStore stores state and step events in a directory of files
type DirectoryStore struct {
	directory string
	retain    int
	log       model.Logger
	mu        sync.Mutex
}

var _ model.StateStore = (*DirectoryStore)(nil)

// NewDirectoryStore creates a new directory based state store, the directory is created on first write
func NewDirectoryStore(directory string, retain int, logger model.Logger) (*DirectoryStore, error) {
	if directory == "" {
		return nil, fmt.Errorf("state directory path cannot be empty")
	}

	absDir, err := filepath.Abs(filepath.Clean(directory))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	if retain <= 0 {
		retain = DefaultRetainEvents
	}

	return &DirectoryStore{
		directory: absDir,
		retain:    retain,
		log:       logger.With("store", "directory"),
	}, nil
}

// Directory is the absolute path of the store
func (s *DirectoryStore) Directory() string {
	return s.directory
}

// Load reads the persisted state, a store without state holds a fresh unit state
func (s *DirectoryStore) Load() (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.directory, stateFile))
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewState(), nil
	}
	if err != nil {
		return nil, err
	}

	state := model.NewState()
	err = json.Unmarshal(data, state)
	if err != nil {
		return nil, fmt.Errorf("corrupt state in %s: %w", s.directory, err)
	}

	if state.Consumers == nil {
		state.Consumers = make(map[string]model.ConsumerState)
	}

	return state, nil
}

// Save atomically replaces the persisted state
func (s *DirectoryStore) Save(state *model.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.MkdirAll(s.directory, 0700)
	if err != nil {
		return err
	}

	state.Updated = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tf, err := os.CreateTemp(s.directory, stateFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tf.Name())
	defer tf.Close()

	_, err = tf.Write(data)
	if err != nil {
		return err
	}

	err = tf.Close()
	if err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}

	err = os.Rename(tf.Name(), filepath.Join(s.directory, stateFile))
	if err != nil {
		return fmt.Errorf("could not rename temporary file: %w", err)
	}

	s.log.Debug("Saved state", "phase", state.Phase)

	return nil
}

// RecordEvent writes event to a file named by its id and prunes old events
func (s *DirectoryStore) RecordEvent(event *model.StepEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updateMetrics(event)

	// ksuids contain no path separators so the id is safe to use as a file name
	_, err := ksuid.Parse(event.EventID)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	dir := filepath.Join(s.directory, eventsDir)
	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return err
	}

	filename := filepath.Join(dir, event.EventID+eventSuffix)
	s.log.Debug("Recording event", "filename", filename)

	err = os.WriteFile(filename, data, 0600)
	if err != nil {
		return err
	}

	return s.pruneUnlocked()
}

func (s *DirectoryStore) eventFilesUnlocked() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.directory, eventsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), eventSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}

	// ksuids are k-sortable so this gives us time order
	sort.Strings(names)

	return names, nil
}

func (s *DirectoryStore) pruneUnlocked() error {
	names, err := s.eventFilesUnlocked()
	if err != nil {
		return err
	}

	if len(names) <= s.retain {
		return nil
	}

	for _, name := range names[:len(names)-s.retain] {
		err = os.Remove(filepath.Join(s.directory, eventsDir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// Events returns the latest limit events oldest first, limit <= 0 returns all events
func (s *DirectoryStore) Events(limit int) ([]*model.StepEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.eventFilesUnlocked()
	if err != nil {
		return nil, err
	}

	events := make([]*model.StepEvent, 0, len(names))
	for _, name := range names {
		filename := filepath.Join(s.directory, eventsDir, name)
		data, err := os.ReadFile(filename)
		if err != nil {
			s.log.Error("Failed to read event file", "filename", filename, "error", err)
			continue
		}

		var event model.StepEvent
		err = json.Unmarshal(data, &event)
		if err != nil {
			s.log.Error("Failed to parse event", "filename", filename, "error", err)
			continue
		}

		if event.Protocol != model.StepEventProtocol {
			s.log.Warn("Unknown event protocol", "filename", filename, "protocol", event.Protocol)
			continue
		}

		events = append(events, &event)
	}

	// ids only order events to the second
	sort.SliceStable(events, func(i, j int) bool { return events[i].TimeStamp.Before(events[j].TimeStamp) })

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	return events, nil
}
