// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/choria-io/fisk"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/choria-io/openstack-nfs/hooktools"
	"github.com/choria-io/openstack-nfs/metrics"
	"github.com/choria-io/openstack-nfs/model"
)

type hookCommand struct {
	name string
}

func registerHookCommand(app *fisk.Application) {
	cmd := &hookCommand{}

	hook := app.Command("hook", "Handles a charm hook").Action(cmd.hookAction)
	hook.Arg("name", "The hook to handle").Envar("JUJU_HOOK_NAME").Required().StringVar(&cmd.name)
}

func (c *hookCommand) hookAction(_ *fisk.ParseContext) error {
	timer := prometheus.NewTimer(metrics.HookRunTime.WithLabelValues(c.name))

	event, err := hooktools.HookEvent(c.name)
	if errors.Is(err, hooktools.ErrUnsupportedHook) {
		return nil
	}
	if err != nil {
		return err
	}

	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if mgr.Environment().Hook == "" {
		mgr.Environment().Hook = c.name
	}

	cfg, err := mgr.Config(ctx)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		log.Error("Invalid configuration", "error", err)
		return mgr.HookTools().StatusSet(ctx, model.StatusBlocked, fmt.Sprintf("invalid configuration: %v", err))
	}

	prov, err := mgr.Provisioner(ctx)
	if err != nil {
		return err
	}

	outcome, err := prov.Handle(ctx, event)
	timer.ObserveDuration()
	writeMetrics(cfg.MetricsTextfile, log)
	if err != nil {
		return fmt.Errorf("%s failed: %w", c.name, err)
	}

	if outcome.Blocked != nil {
		log.Warn("Unit is blocked", "hook", c.name, "status", outcome.Blocked.Message, "error", outcome.Blocked.Error())
		return nil
	}

	log.Info("Hook completed", "hook", c.name, "phase", outcome.State.Phase.String(), "steps", len(outcome.Steps))

	return nil
}
