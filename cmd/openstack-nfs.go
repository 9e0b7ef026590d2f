// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/choria-io/fisk"

	"github.com/choria-io/openstack-nfs/hooktools"
)

var (
	ctx        context.Context
	debug      bool
	info       bool
	configFile string
	stateDir   string
	Version    = "development"
)

func main() {
	app := fisk.New("openstack-nfs", "OpenStack NFS shared storage subordinate")
	app.Version(Version)
	app.Author("https://choria.io")

	app.Flag("debug", "Enable debug logging").UnNegatableBoolVar(&debug)
	app.Flag("info", "Enable info logging").UnNegatableBoolVar(&info)
	app.Flag("config", "Configuration file to use outside of hooks").Envar("OPENSTACK_NFS_CONFIG").PlaceHolder("FILE").StringVar(&configFile)
	app.Flag("state", "Directory holding the provisioning state").Envar("OPENSTACK_NFS_STATE").PlaceHolder("DIR").StringVar(&stateDir)

	registerHookCommand(app)
	registerStatusCommand(app)
	registerCheckCommand(app)
	registerAnnounceCommand(app)
	registerFstabCommand(app)
	registerFactsCommand(app)

	ctx, _ = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app.MustParseWithUsage(dispatchArgs(os.Args))
}

// dispatchArgs runs the hook command when invoked through a hook symlink like hooks/install
func dispatchArgs(argv []string) []string {
	_, err := hooktools.HookEvent(argv[0])
	if err != nil && filepath.Base(filepath.Dir(argv[0])) != "hooks" {
		return argv[1:]
	}

	return append([]string{"hook", filepath.Base(argv[0])}, argv[1:]...)
}
