// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"github.com/choria-io/openstack-nfs/model"
)

// Transition computes the state after event and the steps still required to converge.
//
// Only the next outstanding provisioning step is returned while the unit is not ready, the
// driver feeds the completion event of each step back in to learn about the following one.
// Once ready every connected consumer gets configured and the status is assessed last.
func Transition(current *model.State, event model.Event) (*model.State, []model.Effect) {
	next := current.Clone()

	switch event.Kind {
	case model.EventConfigChanged:
		next.Phase = min(next.Phase, model.PhaseInstalled)
		for name, cs := range next.Consumers {
			if cs == model.ConsumerPublished {
				next.Consumers[name] = model.ConsumerConnected
			}
		}

	case model.EventPackageInstalled:
		next.Phase = max(next.Phase, model.PhaseInstalled)

	case model.EventFstabConfigured:
		next.Phase = max(next.Phase, model.PhaseFstabConfigured)

	case model.EventMounted:
		next.Phase = model.PhaseReady

	case model.EventRelationChanged:
		if known(event.Consumer) {
			next.Consumers[event.Consumer] = model.ConsumerConnected
		}

	case model.EventRelationDeparted:
		if known(event.Consumer) {
			next.Consumers[event.Consumer] = model.ConsumerDisconnected
		}

	case model.EventConsumerPublished:
		if known(event.Consumer) && next.Phase == model.PhaseReady && next.Consumer(event.Consumer) == model.ConsumerConnected {
			next.Consumers[event.Consumer] = model.ConsumerPublished
		}
	}

	return next, plan(next)
}

func plan(s *model.State) []model.Effect {
	switch s.Phase {
	case model.PhaseUninstalled:
		return []model.Effect{{Kind: model.EffectEnsureDependency}}
	case model.PhaseInstalled:
		return []model.Effect{{Kind: model.EffectConfigureFstab}}
	case model.PhaseFstabConfigured:
		return []model.Effect{{Kind: model.EffectMountAndPrepare}}
	}

	var effects []model.Effect
	for _, c := range model.Consumers {
		if s.Consumer(c.Name) == model.ConsumerConnected {
			effects = append(effects, model.Effect{Kind: model.EffectConfigureConsumer, Consumer: c.Name})
		}
	}

	return append(effects, model.Effect{Kind: model.EffectAssessStatus})
}

func known(consumer string) bool {
	_, err := model.ConsumerByName(consumer)
	return err == nil
}
