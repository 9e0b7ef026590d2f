// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package hooktools

import (
	"os"
	"path/filepath"
)

// Environment is the hook execution context passed in the process environment
type Environment struct {
	Unit       string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Hook       string `json:"hook,omitempty" yaml:"hook,omitempty"`
	ContextID  string `json:"context_id,omitempty" yaml:"context_id,omitempty"`
	CharmDir   string `json:"charm_dir,omitempty" yaml:"charm_dir,omitempty"`
	RelationID string `json:"relation_id,omitempty" yaml:"relation_id,omitempty"`
	Relation   string `json:"relation,omitempty" yaml:"relation,omitempty"`
	RemoteUnit string `json:"remote_unit,omitempty" yaml:"remote_unit,omitempty"`
}

// EnvironmentFromOS reads the hook context from the process environment
func EnvironmentFromOS() *Environment {
	return EnvironmentFrom(os.Getenv)
}

// EnvironmentFrom reads the hook context using getenv
func EnvironmentFrom(getenv func(string) string) *Environment {
	return &Environment{
		Unit:       getenv("JUJU_UNIT_NAME"),
		Hook:       getenv("JUJU_HOOK_NAME"),
		ContextID:  getenv("JUJU_CONTEXT_ID"),
		CharmDir:   getenv("JUJU_CHARM_DIR"),
		RelationID: getenv("JUJU_RELATION_ID"),
		Relation:   getenv("JUJU_RELATION"),
		RemoteUnit: getenv("JUJU_REMOTE_UNIT"),
	}
}

// InHookContext determines if the hook tools are usable
func (e *Environment) InHookContext() bool {
	return e.ContextID != ""
}

// StateDirectory is the directory holding persistent charm state
func (e *Environment) StateDirectory() string {
	if e.CharmDir == "" {
		return ""
	}

	return filepath.Join(e.CharmDir, ".openstack-nfs")
}
