// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/choria-io/fisk"

	"github.com/choria-io/openstack-nfs/model"
)

type announceCommand struct {
	consumer string
	publish  bool
}

func registerAnnounceCommand(app *fisk.Application) {
	cmd := &announceCommand{}

	announce := app.Command("announce", "Shows the configuration announced to a consumer").Action(cmd.announceAction)
	announce.Arg("consumer", "The consumer to announce to").Required().EnumVar(&cmd.consumer, model.NovaComputeConsumer, model.GlanceConsumer)
	announce.Flag("publish", "Publish the announcement to all relations of the consumer").UnNegatableBoolVar(&cmd.publish)
}

func (c *announceCommand) announceAction(_ *fisk.ParseContext) error {
	mgr, _, err := newManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	cfg, err := mgr.Config(ctx)
	if err != nil {
		return err
	}

	consumer, err := model.ConsumerByName(c.consumer)
	if err != nil {
		return err
	}

	path, err := cfg.ConsumerPath(consumer.Name)
	if err != nil {
		return err
	}

	if c.publish {
		if !mgr.Environment().InHookContext() {
			return fmt.Errorf("publishing requires a hook context, use juju exec")
		}

		prov, err := mgr.Provisioner(ctx)
		if err != nil {
			return err
		}

		return prov.PublishConfig(ctx, consumer, path)
	}

	payload, err := model.NewAnnouncement(consumer, path).JSON()
	if err != nil {
		return err
	}

	fmt.Printf("%s=%s\n", model.SubordinateConfigurationKey, payload)

	return nil
}
