// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/choria-io/openstack-nfs/healthcheck"
	"github.com/choria-io/openstack-nfs/model"
)

// maxSteps bounds a single invocation, a converging unit needs at most one step per phase and consumer
const maxSteps = 16

// Outcome is the result of handling an event
type Outcome struct {
	State   *model.State        `json:"state" yaml:"state"`
	Steps   []*model.StepEvent  `json:"steps" yaml:"steps"`
	Blocked *model.BlockedError `json:"-" yaml:"-"`
}

// Handle converges the unit in response to event.
//
// Each step runs in order and its completion is fed back into Transition, state is saved after every
// successful step. A blocked step stops the invocation without error, any other failure is returned.
func (p *Provisioner) Handle(ctx context.Context, event model.Event) (*Outcome, error) {
	current, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load state: %w", err)
	}

	p.log.Info("Handling event", "event", event.String(), "phase", current.Phase)

	state, effects := p.begin(current, event)
	outcome := &Outcome{State: state}

	err = p.store.Save(state)
	if err != nil {
		return outcome, fmt.Errorf("could not save state: %w", err)
	}

	if event.Kind == model.EventRelationChanged && known(event.Consumer) {
		err = p.setStatus(ctx, model.StatusMaintenance, "%s connected, but not yet configured", event.Consumer)
		if err != nil {
			return outcome, err
		}
	}

	for i := 0; len(effects) > 0; i++ {
		if i >= maxSteps {
			return outcome, fmt.Errorf("provisioning did not converge after %d steps", maxSteps)
		}

		effect := effects[0]

		step := model.NewStepEvent(effect.Kind, effect.Consumer)
		step.Unit = p.unit
		step.Hook = p.hook
		step.Phase = state.Phase

		p.lastStatus, p.lastMessage = "", ""

		start := time.Now()
		changed, next, err := p.runEffect(ctx, state, effect)
		step.Duration = time.Since(start)
		step.Changed = changed

		p.finishStep(ctx, step, err)
		outcome.Steps = append(outcome.Steps, step)

		if err != nil {
			var berr *model.BlockedError
			if errors.As(err, &berr) {
				outcome.Blocked = berr
				return outcome, nil
			}

			return outcome, err
		}

		if next == nil {
			effects = effects[1:]
			continue
		}

		state, effects = Transition(state, *next)
		outcome.State = state

		err = p.store.Save(state)
		if err != nil {
			return outcome, fmt.Errorf("could not save state: %w", err)
		}
	}

	return outcome, nil
}

// begin applies event to the loaded state, a changed mount configuration is handled as a config change
// whatever the hook while an unchanged one never disturbs the existing mount
func (p *Provisioner) begin(current *model.State, event model.Event) (*model.State, []model.Effect) {
	hash := p.cfg.Hash()

	var state *model.State
	var effects []model.Effect

	switch {
	case current.ConfigHash != "" && current.ConfigHash != hash:
		p.log.Info("Mount configuration changed", "spec", p.spec.String())
		state, _ = Transition(current, model.Event{Kind: model.EventConfigChanged})
		state, effects = Transition(state, event)

	case event.Kind == model.EventConfigChanged:
		state, effects = Transition(current, model.Event{Kind: model.EventUpdateStatus})

	default:
		state, effects = Transition(current, event)
	}

	state.ConfigHash = hash

	return state, effects
}

func (p *Provisioner) runEffect(ctx context.Context, state *model.State, effect model.Effect) (bool, *model.Event, error) {
	var changed bool
	var err error
	var next model.Event

	switch effect.Kind {
	case model.EffectEnsureDependency:
		changed, err = p.EnsureDependencyInstalled(ctx, state)
		next = model.Event{Kind: model.EventPackageInstalled}

	case model.EffectConfigureFstab:
		changed, err = p.ConfigureFstab(ctx, p.spec)
		next = model.Event{Kind: model.EventFstabConfigured}

	case model.EffectMountAndPrepare:
		changed, err = p.MountAndPrepare(ctx, p.spec, p.cfg.InstancesPath)
		next = model.Event{Kind: model.EventMounted}

	case model.EffectConfigureConsumer:
		err = p.ensureDistinctPath(ctx, state, effect.Consumer)
		if err == nil {
			changed, err = p.ConfigureConsumer(ctx, effect.Consumer)
		}
		next = model.Event{Kind: model.EventConsumerPublished, Consumer: effect.Consumer}

	case model.EffectAssessStatus:
		return false, nil, p.AssessStatus(ctx, state)

	default:
		return false, nil, fmt.Errorf("unknown step %q", effect.Kind)
	}

	if err != nil {
		return changed, nil, err
	}

	return changed, &next, nil
}

// AssessStatus reports the status of a ready unit, an unhealthy mount takes precedence
func (p *Provisioner) AssessStatus(ctx context.Context, state *model.State) error {
	if state.Phase < model.PhaseReady {
		return nil
	}

	if p.health != nil {
		res := p.health.CheckMount(ctx, p.spec)
		if res.Status != model.HealthCheckOK {
			return p.setStatus(ctx, healthcheck.WorkloadStatus(res), "%s", res.Output)
		}
	}

	for _, c := range model.Consumers {
		if state.Consumer(c.Name) == model.ConsumerPublished {
			return p.setStatus(ctx, model.StatusActive, MsgConfigApplied)
		}
	}

	return p.setStatus(ctx, model.StatusMaintenance, MsgMounted)
}

func (p *Provisioner) finishStep(ctx context.Context, step *model.StepEvent, err error) {
	if err != nil {
		step.Failed = true
		step.Error = err.Error()
	}

	step.Status = p.lastStatus
	step.Message = p.lastMessage

	step.LogStatus(p.log)

	rerr := p.store.RecordEvent(step)
	if rerr != nil {
		p.log.Error("Could not record step event", "step", step.Step, "error", rerr)
	}

	if p.publisher == nil {
		return
	}

	perr := p.publisher.Publish(ctx, step)
	if perr != nil {
		p.log.Warn("Could not publish step event", "step", step.Step, "error", perr)
	}
}
