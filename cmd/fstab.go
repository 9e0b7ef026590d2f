// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/choria-io/fisk"

	"github.com/choria-io/openstack-nfs/fstab"
)

type fstabCommand struct {
	json bool
}

func registerFstabCommand(app *fisk.Application) {
	cmd := &fstabCommand{}

	tab := app.Command("fstab", "Inspects the persistent mount table")

	list := tab.Command("list", "Lists fstab entries, marking the managed one").Alias("ls").Action(cmd.listAction)
	list.Flag("json", "Output entries in JSON format").UnNegatableBoolVar(&cmd.json)
}

func (c *fstabCommand) listAction(_ *fisk.ParseContext) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}

	cfg, err := mgr.Config(ctx)
	if err != nil {
		return err
	}

	table, err := fstab.Load(cfg.FstabPath, log)
	if err != nil {
		return err
	}

	if c.json {
		out, err := json.MarshalIndent(table.Entries(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		return nil
	}

	for _, entry := range table.Entries() {
		marker := " "
		if entry.Mountpoint == cfg.Mountpoint {
			marker = "*"
		}

		fmt.Printf("%s %s\n", marker, entry.String())
	}

	return nil
}
