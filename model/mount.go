// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// MountSpec describes the filesystem to mount, it is resolved once per provisioning cycle
type MountSpec struct {
	Device         string        `json:"device" yaml:"device"`
	Mountpoint     string        `json:"mountpoint" yaml:"mountpoint"`
	FilesystemType string        `json:"type" yaml:"type"`
	Options        string        `json:"options" yaml:"options"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
}

func (s MountSpec) String() string {
	return fmt.Sprintf("%s on %s type %s (%s)", s.Device, s.Mountpoint, s.FilesystemType, s.Options)
}

// Hash is a stable digest of the mount settings combined with extra values such as consumer paths
func (s MountSpec) Hash(extra ...string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%d", s.Device, s.Mountpoint, s.FilesystemType, s.Options, s.Timeout)
	for _, e := range extra {
		fmt.Fprintf(h, "\x00%s", e)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// DirectoryOwnership is the desired owner of a directory
type DirectoryOwnership struct {
	Path  string `json:"path" yaml:"path"`
	User  string `json:"user" yaml:"user"`
	Group string `json:"group" yaml:"group"`
}
