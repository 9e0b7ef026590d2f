// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/choria-io/openstack-nfs/fstab"
	"github.com/choria-io/openstack-nfs/model"
)

// EnsureDependencyInstalled installs the NFS client package, it does nothing once the unit is installed.
// Returns true when the package had to be installed.
func (p *Provisioner) EnsureDependencyInstalled(ctx context.Context, state *model.State) (bool, error) {
	if state.Phase >= model.PhaseInstalled {
		return false, nil
	}

	err := p.setStatus(ctx, model.StatusMaintenance, MsgWaitingForInstallation)
	if err != nil {
		return false, err
	}

	installed, err := p.packages.Installed(ctx, DependencyPackage)
	if err != nil {
		return false, p.blocked(ctx, model.ErrInstallFailed, err, MsgInstallFailed)
	}

	changed := false
	if !installed {
		err = p.packages.Install(ctx, DependencyPackage)
		if err != nil {
			return false, p.blocked(ctx, model.ErrInstallFailed, err, MsgInstallFailed)
		}
		changed = true

		installed, err = p.packages.Installed(ctx, DependencyPackage)
		if err != nil {
			return changed, p.blocked(ctx, model.ErrInstallFailed, err, MsgInstallFailed)
		}
		if !installed {
			return changed, p.blocked(ctx, model.ErrInstallFailed, fmt.Errorf("%s is not installed after installation", DependencyPackage), MsgInstallFailed)
		}
	}

	return changed, p.setStatus(ctx, model.StatusMaintenance, MsgPerformingSetup)
}

// ConfigureFstab replaces any fstab entry for the mountpoint of spec with one describing spec.
//
// An existing mount at the mountpoint is unmounted first, when that fails the fstab is left untouched.
func (p *Provisioner) ConfigureFstab(ctx context.Context, spec model.MountSpec) (bool, error) {
	if spec.Device == "" {
		return false, p.blocked(ctx, model.ErrConfigMissing, nil, MsgWaitingForFilesystem)
	}

	table, err := fstab.Load(p.fstabPath, p.log)
	if err != nil {
		return false, err
	}

	existing, found := table.EntryByMountpoint(spec.Mountpoint)
	if found {
		p.log.Info("Replacing existing fstab entry", "entry", existing.String())

		err = p.setStatus(ctx, model.StatusMaintenance, MsgUnmountingExisting)
		if err != nil {
			return false, err
		}

		err = p.unmountExisting(ctx, spec)
		switch {
		case errors.Is(err, model.ErrUnmountTimeout):
			return false, p.blocked(ctx, model.ErrUnmountTimeout, err, MsgUnmountTimeout)
		case err != nil:
			return false, p.blocked(ctx, model.ErrUnmountFailed, err, MsgUnmountError)
		}

		table.Remove(spec.Mountpoint)
	}

	err = table.Add(fstab.NewEntry(spec))
	if err != nil {
		return false, err
	}

	err = table.Save()
	if err != nil {
		return false, fmt.Errorf("could not save %s: %w", p.fstabPath, err)
	}

	return true, nil
}

// unmountExisting unmounts only what is mounted. Skipping umount for a stale entry whose mountpoint is not
// mounted is deliberate, umount would exit non zero on every hook and leave the unit blocked for good.
func (p *Provisioner) unmountExisting(ctx context.Context, spec model.MountSpec) error {
	mounted, err := p.mounter.IsMounted(spec.Mountpoint)
	if err != nil {
		p.log.Warn("Could not determine if mountpoint is mounted, unmounting", "mountpoint", spec.Mountpoint, "error", err)
		mounted = true
	}

	if !mounted {
		p.log.Info("Existing filesystem is not mounted", "mountpoint", spec.Mountpoint)
		return nil
	}

	return p.mounter.Unmount(ctx, spec.Mountpoint, spec.Timeout)
}

// MountAndPrepare creates the mountpoint, mounts all fstab entries and prepares instancesPath for nova when
// it differs from the mountpoint.
func (p *Provisioner) MountAndPrepare(ctx context.Context, spec model.MountSpec, instancesPath string) (bool, error) {
	_, err := p.owner.EnsureDirectory(spec.Mountpoint)
	switch {
	case errors.Is(err, model.ErrDirectoryCreatePermission):
		return false, p.blocked(ctx, model.ErrDirectoryCreatePermission, err, "insufficient permissions to create %s", spec.Mountpoint)
	case err != nil:
		return false, err
	}

	err = p.mounter.MountAll(ctx, spec.Timeout)
	switch {
	case errors.Is(err, model.ErrMountTimeout):
		return false, p.blocked(ctx, model.ErrMountTimeout, err, MsgMountTimeout)
	case err != nil:
		return false, p.blocked(ctx, model.ErrMountFailed, err, MsgMountError)
	}

	if p.cfg.VerifyMount {
		mounted, err := p.mounter.IsMounted(spec.Mountpoint)
		if err != nil {
			return false, err
		}
		if !mounted {
			return false, p.blocked(ctx, model.ErrNotMounted, fmt.Errorf("%s is not in the mount table", spec.Mountpoint), MsgMountError)
		}
	}

	if instancesPath != "" && filepath.Clean(instancesPath) != filepath.Clean(spec.Mountpoint) {
		nova, err := model.ConsumerByName(model.NovaComputeConsumer)
		if err != nil {
			return false, err
		}

		_, err = p.EnsurePathOwnedBy(ctx, nova.Ownership(instancesPath))
		if err != nil {
			return false, err
		}
	}

	return true, p.setStatus(ctx, model.StatusMaintenance, MsgMounted)
}

// EnsurePathOwnedBy creates the directory and corrects its ownership, permission failures block the unit
func (p *Provisioner) EnsurePathOwnedBy(ctx context.Context, target model.DirectoryOwnership) (bool, error) {
	changed, err := p.owner.EnsurePathOwnedBy(target.Path, target.User, target.Group)
	switch {
	case errors.Is(err, model.ErrDirectoryCreatePermission):
		return changed, p.blocked(ctx, model.ErrDirectoryCreatePermission, err, "insufficient permissions to create %s", target.Path)
	case errors.Is(err, model.ErrOwnershipChangePermission):
		return changed, p.blocked(ctx, model.ErrOwnershipChangePermission, err, "insufficient permissions to chown %s to %s", target.Path, target.User)
	case err != nil:
		return changed, err
	}

	return changed, nil
}

// PublishConfig announces path to every relation of consumer, having no relations is not an error
func (p *Provisioner) PublishConfig(ctx context.Context, consumer model.Consumer, path string) error {
	payload, err := model.NewAnnouncement(consumer, path).JSON()
	if err != nil {
		return err
	}

	ids, err := p.relations.RelationIDs(ctx, consumer.Relation)
	if err != nil {
		return fmt.Errorf("could not list %s relations: %w", consumer.Relation, err)
	}

	if len(ids) == 0 {
		p.log.Info("No relations to publish to", "relation", consumer.Relation)
		return nil
	}

	for _, id := range ids {
		p.log.Info("Publishing subordinate configuration", "relation", id, "consumer", consumer.Name, "path", path)

		err = p.relations.RelationSet(ctx, id, map[string]string{model.SubordinateConfigurationKey: payload})
		if err != nil {
			return fmt.Errorf("could not publish to %s: %w", id, err)
		}
	}

	return nil
}

// ensureDistinctPath blocks a consumer whose directory is also used by another related consumer,
// a directory has a single owner so one of them would lose access
func (p *Provisioner) ensureDistinctPath(ctx context.Context, state *model.State, name string) error {
	path, err := p.cfg.ConsumerPath(name)
	if err != nil {
		return err
	}

	for _, other := range model.Consumers {
		if other.Name == name || state.Consumer(other.Name) == model.ConsumerDisconnected {
			continue
		}

		otherPath, err := p.cfg.ConsumerPath(other.Name)
		if err != nil {
			return err
		}

		if otherPath == path {
			return p.blocked(ctx, model.ErrConsumerPathConflict, nil, "%s and %s both use %s, set distinct nova-path and glance-path", name, other.Name, path)
		}
	}

	return nil
}

// ConfigureConsumer prepares the directory of the named consumer and announces it
func (p *Provisioner) ConfigureConsumer(ctx context.Context, name string) (bool, error) {
	consumer, err := model.ConsumerByName(name)
	if err != nil {
		return false, err
	}

	path, err := p.cfg.ConsumerPath(name)
	if err != nil {
		return false, err
	}

	err = p.setStatus(ctx, model.StatusMaintenance, "configuring %s", consumer.Name)
	if err != nil {
		return false, err
	}

	changed, err := p.EnsurePathOwnedBy(ctx, consumer.Ownership(path))
	if err != nil {
		return changed, err
	}

	err = p.PublishConfig(ctx, consumer, path)
	if err != nil {
		return changed, err
	}

	return true, p.setStatus(ctx, model.StatusActive, MsgConfigApplied)
}
