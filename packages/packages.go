// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package packages

import (
	"context"
	"fmt"
	"sync"

	"github.com/choria-io/openstack-nfs/internal/registry"
	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/packages/apt"
)

func init() {
	apt.Register()
}

// Installer installs packages using the most suitable provider for the node
type Installer struct {
	provider string
	facts    map[string]any
	runner   model.CommandRunner
	log      model.Logger

	selected model.PackageProvider
	mu       sync.Mutex
}

var _ model.PackageInstaller = (*Installer)(nil)

// NewInstaller creates an installer using the named provider, an empty name selects one based on facts
func NewInstaller(provider string, facts map[string]any, runner model.CommandRunner, log model.Logger) *Installer {
	return &Installer{
		provider: provider,
		facts:    facts,
		runner:   runner,
		log:      log.With("component", "packages"),
	}
}

// Provider is the name of the selected provider, empty until one was selected
func (i *Installer) Provider() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.selected == nil {
		return ""
	}

	return i.selected.Name()
}

func (i *Installer) selectProvider() (model.PackageProvider, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.selected != nil {
		return i.selected, nil
	}

	prov, err := registry.FindSuitableProvider(i.provider, i.facts, i.log, i.runner)
	if err != nil {
		return nil, err
	}

	pp, ok := prov.(model.PackageProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not manage packages", model.ErrProviderNotManageable, prov.Name())
	}

	i.log.Debug("Selected package provider", "provider", pp.Name())
	i.selected = pp

	return pp, nil
}

// Status is the current state of pkg
func (i *Installer) Status(ctx context.Context, pkg string) (*model.PackageState, error) {
	p, err := i.selectProvider()
	if err != nil {
		return nil, err
	}

	return p.Status(ctx, pkg)
}

// Installed determines if pkg is installed
func (i *Installer) Installed(ctx context.Context, pkg string) (bool, error) {
	state, err := i.Status(ctx, pkg)
	if err != nil {
		return false, err
	}

	return state.Installed, nil
}

// Install installs pkg
func (i *Installer) Install(ctx context.Context, pkg string) error {
	p, err := i.selectProvider()
	if err != nil {
		return err
	}

	i.log.Info("Installing package", "package", pkg, "provider", p.Name())

	return p.Install(ctx, pkg)
}
