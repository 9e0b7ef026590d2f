// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/choria-io/fisk"

	"github.com/choria-io/openstack-nfs/healthcheck"
	"github.com/choria-io/openstack-nfs/model"
)

type checkCommand struct {
	name string
}

func registerCheckCommand(app *fisk.Application) {
	cmd := &checkCommand{}

	check := app.Command("check", "Checks the mount, exiting with Nagios plugin codes").Action(cmd.checkAction)
	check.Flag("name", "Name to show in the check output").Default("NFS").StringVar(&cmd.name)
}

func (c *checkCommand) checkAction(_ *fisk.ParseContext) error {
	res := c.check()

	fmt.Println(healthcheck.NagiosOutput(c.name, res))
	os.Exit(healthcheck.NagiosExitCode(res))

	return nil
}

func (c *checkCommand) check() *model.HealthCheckResult {
	mgr, _, err := newManager()
	if err != nil {
		return &model.HealthCheckResult{Status: model.HealthCheckUnknown, Output: err.Error()}
	}
	defer mgr.Close()

	cfg, err := mgr.Config(ctx)
	if err != nil {
		return &model.HealthCheckResult{Status: model.HealthCheckUnknown, Output: err.Error()}
	}

	return mgr.HealthChecker().CheckMount(ctx, cfg.MountSpec())
}
