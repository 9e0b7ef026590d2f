// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package apt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/choria-io/openstack-nfs/model"
)

const (
	ProviderName = "apt"

	// InstallTimeout bounds a single apt-get invocation
	InstallTimeout = 10 * time.Minute
)

// Provider manages packages using the APT package manager
type Provider struct {
	log    model.Logger
	runner model.CommandRunner
}

var _ model.PackageProvider = (*Provider)(nil)

// NewAptProvider creates a new APT package provider
func NewAptProvider(log model.Logger, runner model.CommandRunner) (*Provider, error) {
	return &Provider{log: log, runner: runner}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return ProviderName
}

// We ensure that any user of this provider in the same process will not call apt multiple times
func (p *Provider) execute(ctx context.Context, cmd string, args ...string) (stdout []byte, stderr []byte, exitCode int, err error) {
	model.PackageGlobalLock.Lock()
	defer model.PackageGlobalLock.Unlock()

	return p.runner.Run(ctx, model.Command{
		Name:    cmd,
		Args:    args,
		Timeout: InstallTimeout,
		Env: []string{
			"DEBIAN_FRONTEND=noninteractive",
			"APT_LISTBUGS_FRONTEND=none",
			"APT_LISTCHANGES_FRONTEND=none",
		},
	})
}

func (p *Provider) install(ctx context.Context, pkg string) (string, error) {
	_, stderr, exitcode, err := p.execute(ctx, "apt-get", "install", "-y", "-q", "-o", "DPkg::Options::=--force-confold", pkg)
	if err != nil {
		return "", err
	}

	if exitcode != 0 {
		return strings.TrimSpace(string(stderr)), fmt.Errorf("failed to install package %q, apt-get exited %d", pkg, exitcode)
	}

	return "", nil
}

// Install installs pkg, when the first attempt fails the package indexes are refreshed and it is tried once more
func (p *Provider) Install(ctx context.Context, pkg string) error {
	stderr, err := p.install(ctx, pkg)
	if err == nil {
		return nil
	}

	p.log.Warn("Package install failed, updating package indexes", "package", pkg, "error", err, "stderr", stderr)

	_, stderr2, exitcode, uerr := p.execute(ctx, "apt-get", "update", "-q")
	if uerr != nil {
		return fmt.Errorf("%w: %w", err, uerr)
	}
	if exitcode != 0 {
		return fmt.Errorf("%w: apt-get update exited %d: %s", err, exitcode, strings.TrimSpace(string(stderr2)))
	}

	_, err = p.install(ctx, pkg)

	return err
}

// Status determines the installation status of pkg
func (p *Provider) Status(ctx context.Context, pkg string) (*model.PackageState, error) {
	stdout, _, exitcode, err := p.execute(ctx, "dpkg-query", "-W", "-f=${Package} ${Version} ${Architecture} ${db:Status-Status}", pkg)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(strings.TrimSpace(string(stdout)), " ")
	installed := false
	status := "unknown"
	if len(parts) == 4 {
		status = parts[3]
		installed = status == "installed"
	}

	if exitcode != 0 || !installed {
		return &model.PackageState{
			Name:     pkg,
			Version:  "absent",
			Status:   status,
			Provider: ProviderName,
		}, nil
	}

	return &model.PackageState{
		Name:      parts[0],
		Version:   parts[1],
		Arch:      parts[2],
		Status:    status,
		Installed: true,
		Provider:  ProviderName,
	}, nil
}
