// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/choria-io/openstack-nfs/config"
	"github.com/choria-io/openstack-nfs/events"
	"github.com/choria-io/openstack-nfs/healthcheck"
	"github.com/choria-io/openstack-nfs/hooktools"
	"github.com/choria-io/openstack-nfs/internal/cmdrunner"
	"github.com/choria-io/openstack-nfs/internal/facts"
	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/mounter"
	"github.com/choria-io/openstack-nfs/ownership"
	"github.com/choria-io/openstack-nfs/packages"
	"github.com/choria-io/openstack-nfs/provisioner"
	"github.com/choria-io/openstack-nfs/state"
)

// FactsTimeout bounds gathering facts used to select package providers
const FactsTimeout = 2 * time.Second

// Manager wires the provisioner and its collaborators for a single process
type Manager struct {
	env             *hooktools.Environment
	cfg             *config.Config
	cfgFile         string
	stateDir        string
	packageProvider string
	log             model.Logger
	runner          model.CommandRunner
	tools           model.HookTools
	store           model.StateStore
	publisher       model.EventPublisher
	facts           map[string]any

	mu sync.Mutex
}

// NewManager creates a new manager, by default the hook environment is read from the process environment
func NewManager(log model.Logger, opts ...Option) (*Manager, error) {
	mgr := &Manager{log: log}

	for _, opt := range opts {
		err := opt(mgr)
		if err != nil {
			return nil, err
		}
	}

	if mgr.env == nil {
		mgr.env = hooktools.EnvironmentFromOS()
	}

	if mgr.runner == nil {
		runner, err := mgr.NewRunner()
		if err != nil {
			return nil, err
		}
		mgr.runner = runner
	}

	if mgr.tools == nil {
		mgr.tools = hooktools.New(mgr.runner, log.With("component", "hooktools"))
	}

	if mgr.store == nil {
		dir := mgr.stateDir
		if dir == "" {
			dir = mgr.env.StateDirectory()
		}

		if dir == "" {
			mgr.log.Debug("No state directory available, using memory state store")
			mgr.store = state.NewMemoryStore(nil)
		} else {
			store, err := state.NewDirectoryStore(dir, 0, log)
			if err != nil {
				return nil, err
			}
			mgr.store = store
		}
	}

	return mgr, nil
}

// Environment is the hook context the manager runs in
func (m *Manager) Environment() *hooktools.Environment {
	return m.env
}

// HookTools are the tools used to talk to the unit agent
func (m *Manager) HookTools() model.HookTools {
	return m.tools
}

// StateStore is the store holding provisioning state and step events
func (m *Manager) StateStore() model.StateStore {
	return m.store
}

// Config loads the charm configuration from a file when one was set, otherwise from the unit agent
func (m *Manager) Config(ctx context.Context) (*config.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg != nil {
		return m.cfg, nil
	}

	var cfg *config.Config
	var err error

	switch {
	case m.cfgFile != "":
		m.log.Debug("Loading configuration", "file", m.cfgFile)
		cfg, err = config.LoadFile(m.cfgFile)

	case m.env.InHookContext():
		var raw json.RawMessage
		raw, err = m.tools.ConfigGet(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not retrieve charm configuration: %w", err)
		}
		cfg, err = config.FromJSON(raw)

	default:
		return nil, fmt.Errorf("%w: not running in a hook context and no configuration file given", model.ErrConfigMissing)
	}
	if err != nil {
		return nil, err
	}

	m.cfg = cfg

	return cfg, nil
}

// Facts gathers and caches the system facts
func (m *Manager) Facts(ctx context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.facts != nil {
		return m.facts, nil
	}

	to, cancel := context.WithTimeout(ctx, FactsTimeout)
	defer cancel()

	f, err := facts.StandardFacts(to, m.log.With("component", "facts"))
	if err != nil {
		return nil, err
	}

	m.facts = f

	return f, nil
}

// Logger creates a new logger with the provided key-value pairs added to the context
func (m *Manager) Logger(args ...any) (model.Logger, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("invalid logger arguments, must be key value pairs")
	}

	return m.log.With(args...), nil
}

// NewRunner creates a new command runner instance
func (m *Manager) NewRunner() (model.CommandRunner, error) {
	log, err := m.Logger("component", "runner")
	if err != nil {
		return nil, err
	}

	return cmdrunner.NewCommandRunner(log)
}

// Mounter manages mounts using the system mount utilities
func (m *Manager) Mounter() *mounter.Mounter {
	return mounter.New(m.runner, m.log.With("component", "mounter"))
}

// HealthChecker checks the live mount
func (m *Manager) HealthChecker() *healthcheck.Checker {
	return healthcheck.NewChecker(m.runner, mounter.MountinfoLookup, m.log.With("component", "healthcheck"))
}

// EventPublisher publishes step events to the NATS context named in cfg
func (m *Manager) EventPublisher(cfg *config.Config) model.EventPublisher {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publisher == nil {
		m.publisher = events.New(cfg.NatsContext, cfg.EventSubject, m.env.Unit, m.log.With("component", "events"))
	}

	return m.publisher
}

// PackageInstaller installs packages using the provider best suited to the node
func (m *Manager) PackageInstaller(ctx context.Context) model.PackageInstaller {
	f, err := m.Facts(ctx)
	if err != nil {
		m.log.Warn("Could not gather facts, selecting package provider without them", "error", err)
	}

	return packages.NewInstaller(m.packageProvider, f, m.runner, m.log)
}

// Provisioner creates a provisioner for the current configuration
func (m *Manager) Provisioner(ctx context.Context) (*provisioner.Provisioner, error) {
	cfg, err := m.Config(ctx)
	if err != nil {
		return nil, err
	}

	log, err := m.Logger("component", "provisioner")
	if err != nil {
		return nil, err
	}

	return provisioner.New(cfg, log,
		provisioner.WithHookTools(m.tools),
		provisioner.WithPackageInstaller(m.PackageInstaller(ctx)),
		provisioner.WithMounter(m.Mounter()),
		provisioner.WithOwnership(ownership.New(m.log.With("component", "ownership"))),
		provisioner.WithStateStore(m.store),
		provisioner.WithEventPublisher(m.EventPublisher(cfg)),
		provisioner.WithHealthChecker(m.HealthChecker()),
		provisioner.WithHookContext(m.env.Unit, m.env.Hook),
	)
}

// Close releases connections made while handling the hook
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.publisher.(interface{ Close() })
	if ok {
		c.Close()
	}
}
