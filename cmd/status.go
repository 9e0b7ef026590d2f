// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"

	"github.com/choria-io/openstack-nfs/model"
)

type statusCommand struct {
	json  bool
	limit int
}

type statusReport struct {
	State  *model.State       `json:"state"`
	Events []*model.StepEvent `json:"events"`
}

func registerStatusCommand(app *fisk.Application) {
	cmd := &statusCommand{}

	status := app.Command("status", "Shows the provisioning state and recent steps").Alias("info").Action(cmd.statusAction)
	status.Flag("json", "Output status in JSON format").UnNegatableBoolVar(&cmd.json)
	status.Flag("limit", "How many recent steps to show").Default("10").IntVar(&cmd.limit)
}

func (c *statusCommand) statusAction(_ *fisk.ParseContext) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	state, err := mgr.StateStore().Load()
	if err != nil {
		return fmt.Errorf("could not load state: %w", err)
	}

	events, err := mgr.StateStore().Events(c.limit)
	if err != nil {
		return fmt.Errorf("could not load steps: %w", err)
	}

	doc, err := json.Marshal(statusReport{State: state, Events: events})
	if err != nil {
		return err
	}

	return printDocument(doc, !c.json)
}
