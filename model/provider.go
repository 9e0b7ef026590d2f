// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"sync"
)

// PackageGlobalLock serializes package manager runs within the process, dpkg holds an exclusive lock
var PackageGlobalLock sync.Mutex

// Provider is an interface for a package provider
type Provider interface {
	Name() string
}

type ProviderFactory interface {
	IsManageable(facts map[string]any) (bool, int, error)
	Name() string
	New(Logger, CommandRunner) (Provider, error)
}

// PackageState is the current state of a package on the system
type PackageState struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Arch      string `json:"arch,omitempty" yaml:"arch,omitempty"`
	Status    string `json:"status" yaml:"status"`
	Installed bool   `json:"installed" yaml:"installed"`
	Provider  string `json:"provider" yaml:"provider"`
}

// PackageProvider installs and inspects packages
type PackageProvider interface {
	Provider

	Install(ctx context.Context, pkg string) error
	Status(ctx context.Context, pkg string) (*PackageState, error)
}

// PackageInstaller is the package layer used during provisioning
type PackageInstaller interface {
	Installed(ctx context.Context, pkg string) (bool, error)
	Install(ctx context.Context, pkg string) error
}
