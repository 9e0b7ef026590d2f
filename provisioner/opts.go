// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"fmt"

	"github.com/choria-io/openstack-nfs/model"
)

// Option is a functional option for configuring the provisioner
type Option func(*Provisioner) error

// WithHookTools uses tools for status and relation management
func WithHookTools(tools model.HookTools) Option {
	return func(p *Provisioner) error {
		if tools == nil {
			return fmt.Errorf("hook tools are required")
		}

		p.status = tools
		p.relations = tools

		return nil
	}
}

// WithStatusReporter sets the unit status reporter
func WithStatusReporter(status model.StatusReporter) Option {
	return func(p *Provisioner) error {
		p.status = status
		return nil
	}
}

// WithRelationPublisher sets the relation publisher
func WithRelationPublisher(relations model.RelationPublisher) Option {
	return func(p *Provisioner) error {
		p.relations = relations
		return nil
	}
}

// WithPackageInstaller sets the package installer
func WithPackageInstaller(packages model.PackageInstaller) Option {
	return func(p *Provisioner) error {
		p.packages = packages
		return nil
	}
}

// WithMounter sets the mounter
func WithMounter(m Mounter) Option {
	return func(p *Provisioner) error {
		p.mounter = m
		return nil
	}
}

// WithOwnership sets the directory ownership manager
func WithOwnership(o Ownership) Option {
	return func(p *Provisioner) error {
		p.owner = o
		return nil
	}
}

// WithStateStore sets the state store
func WithStateStore(store model.StateStore) Option {
	return func(p *Provisioner) error {
		p.store = store
		return nil
	}
}

// WithEventPublisher publishes every step event using publisher
func WithEventPublisher(publisher model.EventPublisher) Option {
	return func(p *Provisioner) error {
		p.publisher = publisher
		return nil
	}
}

// WithHealthChecker checks the mount while assessing the unit status
func WithHealthChecker(health HealthChecker) Option {
	return func(p *Provisioner) error {
		p.health = health
		return nil
	}
}

// WithHookContext records unit and hook in step events
func WithHookContext(unit string, hook string) Option {
	return func(p *Provisioner) error {
		p.unit = unit
		p.hook = hook
		return nil
	}
}
