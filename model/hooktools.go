// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"encoding/json"
)

// StatusReporter sets the workload status of the unit
type StatusReporter interface {
	StatusSet(ctx context.Context, status Status, message string) error
}

// RelationPublisher publishes settings on relations
type RelationPublisher interface {
	RelationIDs(ctx context.Context, relation string) ([]string, error)
	RelationSet(ctx context.Context, relationID string, settings map[string]string) error
}

// HookTools is the set of hook tools the charm framework offers during hook execution
type HookTools interface {
	StatusReporter
	RelationPublisher

	ConfigGet(ctx context.Context) (json.RawMessage, error)
	JujuLog(ctx context.Context, level string, message string) error
}
