// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"fmt"

	"github.com/choria-io/openstack-nfs/config"
	"github.com/choria-io/openstack-nfs/hooktools"
	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/state"
)

// Option is a functional option for configuring the manager
type Option func(*Manager) error

// WithEnvironment sets the hook context rather than reading it from the process environment
func WithEnvironment(env *hooktools.Environment) Option {
	return func(m *Manager) error {
		if env == nil {
			return fmt.Errorf("environment is required")
		}

		m.env = env

		return nil
	}
}

// WithConfig uses cfg instead of retrieving the charm configuration
func WithConfig(cfg *config.Config) Option {
	return func(m *Manager) error {
		m.cfg = cfg
		return nil
	}
}

// WithConfigFile loads the configuration from a JSON or YAML file
func WithConfigFile(path string) Option {
	return func(m *Manager) error {
		m.cfgFile = path
		return nil
	}
}

// WithStateDirectory stores state in path rather than the charm directory
func WithStateDirectory(path string) Option {
	return func(m *Manager) error {
		log, err := m.Logger("state", "directory", "path", path)
		if err != nil {
			return err
		}

		store, err := state.NewDirectoryStore(path, 0, log)
		if err != nil {
			return err
		}

		m.stateDir = path
		m.store = store

		return nil
	}
}

// WithStateStore sets the state store
func WithStateStore(store model.StateStore) Option {
	return func(m *Manager) error {
		m.store = store
		return nil
	}
}

// WithRunner sets the command runner used for all external commands
func WithRunner(runner model.CommandRunner) Option {
	return func(m *Manager) error {
		m.runner = runner
		return nil
	}
}

// WithHookTools sets the hook tools client
func WithHookTools(tools model.HookTools) Option {
	return func(m *Manager) error {
		m.tools = tools
		return nil
	}
}

// WithFacts sets facts rather than gathering them
func WithFacts(facts map[string]any) Option {
	return func(m *Manager) error {
		if facts == nil {
			facts = make(map[string]any)
		}

		m.facts = facts

		return nil
	}
}

// WithPackageProvider forces a specific package provider
func WithPackageProvider(name string) Option {
	return func(m *Manager) error {
		m.packageProvider = name
		return nil
	}
}
