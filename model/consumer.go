// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
)

const (
	NovaComputeConsumer = "nova-compute"
	GlanceConsumer      = "glance"

	// SubordinateConfigurationKey is the relation setting principal charms read overrides from
	SubordinateConfigurationKey = "subordinate_configuration"
)

// Consumer describes a service that receives the mount path over a relation
type Consumer struct {
	// Name is the consumer identifier used in state and hook names
	Name string `json:"name" yaml:"name"`
	// Relation is the relation endpoint the consumer is connected on
	Relation string `json:"relation" yaml:"relation"`
	// Service is the top level key of the announcement
	Service string `json:"service" yaml:"service"`
	// ConfigFile is the consumer configuration file being overridden
	ConfigFile string `json:"config_file" yaml:"config_file"`
	Section    string `json:"section" yaml:"section"`
	Key        string `json:"key" yaml:"key"`
	OwnerUser  string `json:"owner_user" yaml:"owner_user"`
	OwnerGroup string `json:"owner_group" yaml:"owner_group"`
}

// Consumers is the table of supported consumers in evaluation order
var Consumers = []Consumer{
	{
		Name:       NovaComputeConsumer,
		Relation:   "ephemeral-backend",
		Service:    "nova",
		ConfigFile: "/etc/nova/nova.conf",
		Section:    "DEFAULT",
		Key:        "instances_path",
		OwnerUser:  "nova",
		OwnerGroup: "nova",
	},
	{
		Name:       GlanceConsumer,
		Relation:   "glance-backend",
		Service:    "glance",
		ConfigFile: "/etc/glance/glance-api.conf",
		Section:    "glance_store",
		Key:        "filesystem_store_datadir",
		OwnerUser:  "glance",
		OwnerGroup: "glance",
	},
}

// ConsumerByName finds a consumer in the table
func ConsumerByName(name string) (Consumer, error) {
	for _, c := range Consumers {
		if c.Name == name {
			return c, nil
		}
	}

	return Consumer{}, fmt.Errorf("%w: %s", ErrUnknownConsumer, name)
}

// ConsumerByRelation finds the consumer connected on a relation endpoint
func ConsumerByRelation(relation string) (Consumer, error) {
	for _, c := range Consumers {
		if c.Relation == relation {
			return c, nil
		}
	}

	return Consumer{}, fmt.Errorf("%w: relation %s", ErrUnknownConsumer, relation)
}

// Ownership is the desired ownership of path for this consumer
func (c Consumer) Ownership(path string) DirectoryOwnership {
	return DirectoryOwnership{Path: path, User: c.OwnerUser, Group: c.OwnerGroup}
}
