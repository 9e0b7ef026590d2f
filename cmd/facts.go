// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"
	"github.com/tidwall/gjson"
)

type factsCommand struct {
	yaml  bool
	query string
}

func registerFactsCommand(app *fisk.Application) {
	cmd := &factsCommand{}

	facts := app.Command("facts", "Shows the host facts used to pick the package provider").Action(cmd.factsAction)
	facts.Arg("query", "gjson query to select part of the facts, like host.info.platformFamily").StringVar(&cmd.query)
	facts.Flag("yaml", "Render the facts as YAML").UnNegatableBoolVar(&cmd.yaml)
}

func (c *factsCommand) factsAction(_ *fisk.ParseContext) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}

	found, err := mgr.Facts(ctx)
	if err != nil {
		return fmt.Errorf("could not gather facts: %w", err)
	}

	doc, err := json.Marshal(found)
	if err != nil {
		return err
	}

	if c.query != "" {
		res := gjson.GetBytes(doc, c.query)
		if !res.Exists() {
			return fmt.Errorf("no fact matches %q", c.query)
		}
		doc = []byte(res.Raw)
	}

	return printDocument(doc, c.yaml)
}
