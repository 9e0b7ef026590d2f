// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
)

// ConfigOverride is a single key and value pair, it encodes as a two element array
type ConfigOverride [2]string

// ConfigFileOverrides holds the per section overrides for one configuration file
type ConfigFileOverrides struct {
	Sections map[string][]ConfigOverride `json:"sections"`
}

// Announcement maps a service to the configuration file overrides it should apply
type Announcement map[string]map[string]ConfigFileOverrides

// NewAnnouncement builds the announcement naming path as the data directory of consumer
func NewAnnouncement(consumer Consumer, path string) Announcement {
	return Announcement{
		consumer.Service: {
			consumer.ConfigFile: ConfigFileOverrides{
				Sections: map[string][]ConfigOverride{
					consumer.Section: {{consumer.Key, path}},
				},
			},
		},
	}
}

// JSON renders the announcement in the form relations carry it
func (a Announcement) JSON() (string, error) {
	j, err := json.Marshal(a)
	if err != nil {
		return "", err
	}

	return string(j), nil
}
