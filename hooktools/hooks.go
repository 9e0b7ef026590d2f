// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package hooktools

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/choria-io/openstack-nfs/model"
)

// ErrUnsupportedHook indicates a hook the charm has nothing to do for
var ErrUnsupportedHook = errors.New("unsupported hook")

// HookEvent maps a hook name, or the path of a hook executable, to the event it delivers
func HookEvent(hook string) (model.Event, error) {
	name := filepath.Base(hook)

	switch model.EventKind(name) {
	case model.EventInstall, model.EventUpgradeCharm, model.EventStart, model.EventConfigChanged, model.EventUpdateStatus:
		return model.Event{Kind: model.EventKind(name)}, nil
	}

	relation, kind, ok := strings.Cut(name, "-relation-")
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %s", ErrUnsupportedHook, name)
	}

	consumer, err := model.ConsumerByRelation(relation)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %s: %w", ErrUnsupportedHook, name, err)
	}

	switch kind {
	case "joined", "changed":
		return model.Event{Kind: model.EventRelationChanged, Consumer: consumer.Name}, nil
	case "departed", "broken":
		return model.Event{Kind: model.EventRelationDeparted, Consumer: consumer.Name}, nil
	default:
		return model.Event{}, fmt.Errorf("%w: %s", ErrUnsupportedHook, name)
	}
}
