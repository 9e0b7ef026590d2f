// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package mounter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/sys/mountinfo"

	"github.com/choria-io/openstack-nfs/model"
)

// MountState describes a live mount
type MountState struct {
	Source     string `json:"source" yaml:"source"`
	Mountpoint string `json:"mountpoint" yaml:"mountpoint"`
	FSType     string `json:"type" yaml:"type"`
	Options    string `json:"options" yaml:"options"`
}

// LookupFunc finds the live mount at mountpoint, nil when nothing is mounted there
type LookupFunc func(mountpoint string) (*MountState, error)

// Mounter mounts and unmounts filesystems using the system mount commands
type Mounter struct {
	runner model.CommandRunner
	log    model.Logger
	lookup LookupFunc
}

type Option func(*Mounter)

// WithLookup replaces the live mount table lookup
func WithLookup(f LookupFunc) Option {
	return func(m *Mounter) {
		m.lookup = f
	}
}

// New creates a new mounter
func New(runner model.CommandRunner, log model.Logger, opts ...Option) *Mounter {
	m := &Mounter{
		runner: runner,
		log:    log,
		lookup: MountinfoLookup,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// MountinfoLookup searches the kernel mount table of this process, stacked mounts resolve to the top most
func MountinfoLookup(mountpoint string) (*MountState, error) {
	infos, err := mountinfo.GetMounts(mountinfo.SingleEntryFilter(filepath.Clean(mountpoint)))
	if err != nil {
		return nil, err
	}

	if len(infos) == 0 {
		return nil, nil
	}

	i := infos[len(infos)-1]

	return &MountState{
		Source:     i.Source,
		Mountpoint: i.Mountpoint,
		FSType:     i.FSType,
		Options:    i.Options,
	}, nil
}

// Lookup finds the live mount at mountpoint
func (m *Mounter) Lookup(mountpoint string) (*MountState, error) {
	return m.lookup(mountpoint)
}

// IsMounted determines if anything is mounted at mountpoint
func (m *Mounter) IsMounted(mountpoint string) (bool, error) {
	state, err := m.lookup(mountpoint)
	if err != nil {
		return false, err
	}

	return state != nil, nil
}

// Unmount unmounts mountpoint, the command is bounded by timeout
func (m *Mounter) Unmount(ctx context.Context, mountpoint string, timeout time.Duration) error {
	m.log.Info("Unmounting filesystem", "mountpoint", mountpoint, "timeout", timeout)

	_, stderr, exitCode, err := m.runner.Run(ctx, model.Command{
		Name:    "umount",
		Args:    []string{mountpoint},
		Timeout: timeout,
	})
	switch {
	case errors.Is(err, model.ErrCommandTimeout):
		return fmt.Errorf("%w: %w", model.ErrUnmountTimeout, err)
	case err != nil:
		return fmt.Errorf("%w: %w", model.ErrUnmountFailed, err)
	case exitCode != 0:
		return fmt.Errorf("%w: umount exited %d: %s", model.ErrUnmountFailed, exitCode, strings.TrimSpace(string(stderr)))
	}

	return nil
}

// MountAll mounts every fstab entry that is not already mounted, the command is bounded by timeout
func (m *Mounter) MountAll(ctx context.Context, timeout time.Duration) error {
	m.log.Info("Mounting all filesystems", "timeout", timeout)

	_, stderr, exitCode, err := m.runner.Run(ctx, model.Command{
		Name:    "mount",
		Args:    []string{"-a"},
		Timeout: timeout,
	})
	switch {
	case errors.Is(err, model.ErrCommandTimeout):
		return fmt.Errorf("%w: %w", model.ErrMountTimeout, err)
	case err != nil:
		return fmt.Errorf("%w: %w", model.ErrMountFailed, err)
	case exitCode != 0:
		return fmt.Errorf("%w: mount exited %d: %s", model.ErrMountFailed, exitCode, strings.TrimSpace(string(stderr)))
	}

	return nil
}
