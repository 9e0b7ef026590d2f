// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"fmt"
	"time"

	"github.com/choria-io/openstack-nfs/config"
	"github.com/choria-io/openstack-nfs/fstab"
	"github.com/choria-io/openstack-nfs/model"
)

// DependencyPackage provides the NFS mount helpers
const DependencyPackage = "nfs-common"

// Operator facing status messages
const (
	MsgWaitingForInstallation = "waiting for installation"
	MsgPerformingSetup        = "performing setup"
	MsgInstallFailed          = "failed to install " + DependencyPackage
	MsgWaitingForFilesystem   = "waiting for filesystem configuration"
	MsgUnmountingExisting     = "unmounting existing filesystem"
	MsgUnmountTimeout         = "Timed out unmounting existing filesystem."
	MsgUnmountError           = "Error unmounting existing filesystem."
	MsgMountTimeout           = "Timed out on mount. Check configuration."
	MsgMountError             = "Mount error. Check configuration."
	MsgMounted                = "filesystem mounted successfully, waiting for relations"
	MsgConfigApplied          = "filesystem mounted and config applied"
)

// Mounter mounts and unmounts filesystems
type Mounter interface {
	Unmount(ctx context.Context, mountpoint string, timeout time.Duration) error
	MountAll(ctx context.Context, timeout time.Duration) error
	IsMounted(mountpoint string) (bool, error)
}

// Ownership creates directories and converges their ownership
type Ownership interface {
	EnsureDirectory(path string) (bool, error)
	EnsurePathOwnedBy(path string, user string, group string) (bool, error)
}

// HealthChecker checks the live mount
type HealthChecker interface {
	CheckMount(ctx context.Context, spec model.MountSpec) *model.HealthCheckResult
}

// Provisioner converges the unit towards a mounted filesystem announced to all connected consumers
type Provisioner struct {
	cfg       *config.Config
	spec      model.MountSpec
	fstabPath string
	unit      string
	hook      string

	packages  model.PackageInstaller
	status    model.StatusReporter
	relations model.RelationPublisher
	mounter   Mounter
	owner     Ownership
	store     model.StateStore
	publisher model.EventPublisher
	health    HealthChecker
	log       model.Logger

	lastStatus  model.Status
	lastMessage string
}

// New creates a provisioner for cfg, the mount spec is resolved once and used for the lifetime of the provisioner
func New(cfg *config.Config, log model.Logger, opts ...Option) (*Provisioner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p := &Provisioner{
		cfg:       cfg,
		spec:      cfg.MountSpec(),
		fstabPath: cfg.FstabPath,
		log:       log,
	}

	if p.fstabPath == "" {
		p.fstabPath = fstab.DefaultPath
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case p.packages == nil:
		return nil, fmt.Errorf("package installer is required")
	case p.status == nil:
		return nil, fmt.Errorf("status reporter is required")
	case p.relations == nil:
		return nil, fmt.Errorf("relation publisher is required")
	case p.mounter == nil:
		return nil, fmt.Errorf("mounter is required")
	case p.owner == nil:
		return nil, fmt.Errorf("ownership manager is required")
	case p.store == nil:
		return nil, fmt.Errorf("state store is required")
	}

	return p, nil
}

// MountSpec is the filesystem being provisioned
func (p *Provisioner) MountSpec() model.MountSpec {
	return p.spec
}

func (p *Provisioner) setStatus(ctx context.Context, status model.Status, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	p.log.Info("Setting unit status", "status", status, "message", msg)

	p.lastStatus = status
	p.lastMessage = msg

	return p.status.StatusSet(ctx, status, msg)
}

// blocked reports the unit as blocked and returns the failure for the caller to abort with
func (p *Provisioner) blocked(ctx context.Context, kind error, cause error, format string, args ...any) error {
	berr := model.NewBlockedError(kind, cause, format, args...)

	err := p.setStatus(ctx, model.StatusBlocked, "%s", berr.Message)
	if err != nil {
		return fmt.Errorf("could not report %q: %w", berr.Message, err)
	}

	return berr
}
