// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package ownership

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"strconv"

	"github.com/choria-io/openstack-nfs/model"
)

// DefaultDirectoryMode is the mode used for newly created directories
const DefaultDirectoryMode os.FileMode = 0755

// Chowner changes the ownership of a path
type Chowner interface {
	Chown(path string, uid int, gid int) error
}

// ResolverFunc resolves user and group names to numeric ids
type ResolverFunc func(usr string, group string) (uid int, gid int, err error)

type osChowner struct{}

func (osChowner) Chown(path string, uid int, gid int) error { return os.Chown(path, uid, gid) }

// Manager creates directories and converges their ownership
type Manager struct {
	log      model.Logger
	chowner  Chowner
	resolver ResolverFunc
	mode     os.FileMode
}

type Option func(*Manager)

// WithChowner sets the implementation used to change ownership
func WithChowner(c Chowner) Option {
	return func(m *Manager) { m.chowner = c }
}

// WithResolver sets the user and group resolver
func WithResolver(r ResolverFunc) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithDirectoryMode sets the mode of created directories
func WithDirectoryMode(mode os.FileMode) Option {
	return func(m *Manager) { m.mode = mode }
}

// New creates a new ownership manager
func New(log model.Logger, opts ...Option) *Manager {
	m := &Manager{
		log:      log,
		chowner:  osChowner{},
		resolver: LookupIDs,
		mode:     DefaultDirectoryMode,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// LookupIDs resolves usr and group using the system user database
func LookupIDs(usr string, group string) (int, int, error) {
	u, err := user.Lookup(usr)
	if err != nil {
		return -1, -1, fmt.Errorf("could not lookup user %q: %w", usr, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return -1, -1, fmt.Errorf("could not convert user id %s to integer: %w", u.Uid, err)
	}

	g, err := user.LookupGroup(group)
	if err != nil {
		return -1, -1, fmt.Errorf("could not lookup group %q: %w", group, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return -1, -1, fmt.Errorf("could not convert group id %s to integer: %w", g.Gid, err)
	}

	return uid, gid, nil
}

// EnsureDirectory creates path and any missing parents, returns true when it had to create it
func (m *Manager) EnsureDirectory(path string) (bool, error) {
	stat, err := os.Stat(path)
	switch {
	case err == nil:
		if !stat.IsDir() {
			return false, fmt.Errorf("%s exists but is not a directory", path)
		}
		return false, nil

	case errors.Is(err, fs.ErrNotExist):
		m.log.Info("Creating directory", "path", path, "mode", fmt.Sprintf("%04o", m.mode))

		err = os.MkdirAll(path, m.mode)
		switch {
		case errors.Is(err, fs.ErrPermission):
			return false, fmt.Errorf("%w: %s: %w", model.ErrDirectoryCreatePermission, path, err)
		case err != nil:
			return false, err
		}

		return true, nil

	case errors.Is(err, fs.ErrPermission):
		return false, fmt.Errorf("%w: %s: %w", model.ErrDirectoryCreatePermission, path, err)

	default:
		return false, err
	}
}

// EnsurePathOwnedBy creates path when missing and changes its ownership only when it differs from usr and group.
// Returns true when anything was changed.
func (m *Manager) EnsurePathOwnedBy(path string, usr string, group string) (bool, error) {
	created, err := m.EnsureDirectory(path)
	if err != nil {
		return false, err
	}

	uid, gid, err := m.resolver(usr, group)
	if err != nil {
		return created, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return created, err
	}

	curUID, curGID, err := ownerIDs(stat)
	if err != nil {
		return created, err
	}

	if curUID == uid && curGID == gid {
		m.log.Debug("Ownership already correct", "path", path, "user", usr, "group", group)
		return created, nil
	}

	m.log.Info("Changing ownership", "path", path, "user", usr, "group", group, "uid", curUID, "gid", curGID)

	err = m.chowner.Chown(path, uid, gid)
	switch {
	case errors.Is(err, fs.ErrPermission):
		return created, fmt.Errorf("%w: %s: %w", model.ErrOwnershipChangePermission, path, err)
	case err != nil:
		return created, err
	}

	return true, nil
}

// Owner reports the owner, group and permissions of path
func Owner(path string) (*model.DirectoryOwnership, string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}

	owner, group, mode, err := fileOwner(stat)
	if err != nil {
		return nil, "", err
	}

	return &model.DirectoryOwnership{Path: path, User: owner, Group: group}, mode, nil
}
