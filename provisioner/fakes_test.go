// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"fmt"
	"time"

	"github.com/choria-io/openstack-nfs/model"
)

type statusCall struct {
	Status  model.Status
	Message string
}

type relationSet struct {
	ID       string
	Settings map[string]string
}

// fakeHookTools records statuses and relation settings
type fakeHookTools struct {
	statuses  []statusCall
	ids       map[string][]string
	sets      []relationSet
	idsErr    error
	statusErr error
}

func newFakeHookTools() *fakeHookTools {
	return &fakeHookTools{ids: map[string][]string{}}
}

func (f *fakeHookTools) StatusSet(_ context.Context, status model.Status, message string) error {
	if f.statusErr != nil {
		return f.statusErr
	}

	f.statuses = append(f.statuses, statusCall{status, message})
	return nil
}

func (f *fakeHookTools) RelationIDs(_ context.Context, relation string) ([]string, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}

	return f.ids[relation], nil
}

func (f *fakeHookTools) RelationSet(_ context.Context, id string, settings map[string]string) error {
	f.sets = append(f.sets, relationSet{id, settings})
	return nil
}

func (f *fakeHookTools) last() statusCall {
	if len(f.statuses) == 0 {
		return statusCall{}
	}

	return f.statuses[len(f.statuses)-1]
}

func (f *fakeHookTools) messages() []string {
	var res []string
	for _, s := range f.statuses {
		res = append(res, s.Message)
	}

	return res
}

// fakeMounter simulates the mount table of a single mountpoint
type fakeMounter struct {
	mounted      map[string]bool
	unmountErr   error
	mountErr     error
	mountMounts  []string
	unmounts     []string
	mountCalls   int
	lastTimeout  time.Duration
	isMountedErr error
}

func newFakeMounter() *fakeMounter {
	return &fakeMounter{mounted: map[string]bool{}}
}

func (f *fakeMounter) Unmount(_ context.Context, mountpoint string, timeout time.Duration) error {
	f.unmounts = append(f.unmounts, mountpoint)
	f.lastTimeout = timeout
	if f.unmountErr != nil {
		return f.unmountErr
	}

	f.mounted[mountpoint] = false
	return nil
}

func (f *fakeMounter) MountAll(_ context.Context, timeout time.Duration) error {
	f.mountCalls++
	f.lastTimeout = timeout
	if f.mountErr != nil {
		return f.mountErr
	}

	for _, mp := range f.mountMounts {
		f.mounted[mp] = true
	}

	return nil
}

func (f *fakeMounter) IsMounted(mountpoint string) (bool, error) {
	if f.isMountedErr != nil {
		return false, f.isMountedErr
	}

	return f.mounted[mountpoint], nil
}

// fakeOwnership fails with configured errors and records requests
type fakeOwnership struct {
	directories []string
	owned       []model.DirectoryOwnership
	dirErr      error
	ownErr      error
}

func (f *fakeOwnership) EnsureDirectory(path string) (bool, error) {
	f.directories = append(f.directories, path)
	return false, f.dirErr
}

func (f *fakeOwnership) EnsurePathOwnedBy(path string, user string, group string) (bool, error) {
	f.owned = append(f.owned, model.DirectoryOwnership{Path: path, User: user, Group: group})
	return false, f.ownErr
}

// fakeInstaller is a package installer with a single package
type fakeInstaller struct {
	installed  bool
	installErr error
	installs   int
	sticky     bool
}

func (f *fakeInstaller) Installed(context.Context, string) (bool, error) {
	return f.installed, nil
}

func (f *fakeInstaller) Install(_ context.Context, pkg string) error {
	f.installs++
	if f.installErr != nil {
		return fmt.Errorf("installing %s: %w", pkg, f.installErr)
	}

	f.installed = !f.sticky
	return nil
}

type fakeHealth struct {
	result *model.HealthCheckResult
}

func (f *fakeHealth) CheckMount(context.Context, model.MountSpec) *model.HealthCheckResult {
	return f.result
}
