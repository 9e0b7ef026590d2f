// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/choria-io/openstack-nfs/model"
)

var _ = Describe("Transition", func() {
	ready := func(consumers map[string]model.ConsumerState) *model.State {
		s := model.NewState()
		s.Phase = model.PhaseReady
		for k, v := range consumers {
			s.Consumers[k] = v
		}
		return s
	}

	It("Should step through the provisioning phases", func() {
		s := model.NewState()

		s, effects := Transition(s, model.Event{Kind: model.EventInstall})
		Expect(s.Phase).To(Equal(model.PhaseUninstalled))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectEnsureDependency}}))

		s, effects = Transition(s, model.Event{Kind: model.EventPackageInstalled})
		Expect(s.Phase).To(Equal(model.PhaseInstalled))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectConfigureFstab}}))

		s, effects = Transition(s, model.Event{Kind: model.EventFstabConfigured})
		Expect(s.Phase).To(Equal(model.PhaseFstabConfigured))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectMountAndPrepare}}))

		s, effects = Transition(s, model.Event{Kind: model.EventMounted})
		Expect(s.Phase).To(Equal(model.PhaseReady))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectAssessStatus}}))
	})

	It("Should not modify the current state", func() {
		s := ready(map[string]model.ConsumerState{model.GlanceConsumer: model.ConsumerPublished})

		next, _ := Transition(s, model.Event{Kind: model.EventConfigChanged})
		Expect(next.Phase).To(Equal(model.PhaseInstalled))
		Expect(s.Phase).To(Equal(model.PhaseReady))
		Expect(s.Consumer(model.GlanceConsumer)).To(Equal(model.ConsumerPublished))
	})

	It("Should lower the phase and republish on config changes", func() {
		s := ready(map[string]model.ConsumerState{
			model.NovaComputeConsumer: model.ConsumerPublished,
			model.GlanceConsumer:      model.ConsumerDisconnected,
		})

		next, effects := Transition(s, model.Event{Kind: model.EventConfigChanged})
		Expect(next.Phase).To(Equal(model.PhaseInstalled))
		Expect(next.Consumer(model.NovaComputeConsumer)).To(Equal(model.ConsumerConnected))
		Expect(next.Consumer(model.GlanceConsumer)).To(Equal(model.ConsumerDisconnected))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectConfigureFstab}}))
	})

	It("Should not reinstall on config changes before installation", func() {
		next, effects := Transition(model.NewState(), model.Event{Kind: model.EventConfigChanged})
		Expect(next.Phase).To(Equal(model.PhaseUninstalled))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectEnsureDependency}}))
	})

	It("Should configure connected consumers in order once ready", func() {
		s := ready(nil)

		s, effects := Transition(s, model.Event{Kind: model.EventRelationChanged, Consumer: model.GlanceConsumer})
		Expect(effects).To(Equal([]model.Effect{
			{Kind: model.EffectConfigureConsumer, Consumer: model.GlanceConsumer},
			{Kind: model.EffectAssessStatus},
		}))

		s, effects = Transition(s, model.Event{Kind: model.EventRelationChanged, Consumer: model.NovaComputeConsumer})
		Expect(effects).To(Equal([]model.Effect{
			{Kind: model.EffectConfigureConsumer, Consumer: model.NovaComputeConsumer},
			{Kind: model.EffectConfigureConsumer, Consumer: model.GlanceConsumer},
			{Kind: model.EffectAssessStatus},
		}))

		s, effects = Transition(s, model.Event{Kind: model.EventConsumerPublished, Consumer: model.NovaComputeConsumer})
		Expect(s.Consumer(model.NovaComputeConsumer)).To(Equal(model.ConsumerPublished))
		Expect(effects).To(Equal([]model.Effect{
			{Kind: model.EffectConfigureConsumer, Consumer: model.GlanceConsumer},
			{Kind: model.EffectAssessStatus},
		}))
	})

	It("Should only record connections before the unit is ready", func() {
		s := model.NewState()
		s.Phase = model.PhaseInstalled

		next, effects := Transition(s, model.Event{Kind: model.EventRelationChanged, Consumer: model.NovaComputeConsumer})
		Expect(next.Consumer(model.NovaComputeConsumer)).To(Equal(model.ConsumerConnected))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectConfigureFstab}}))

		next, _ = Transition(next, model.Event{Kind: model.EventConsumerPublished, Consumer: model.NovaComputeConsumer})
		Expect(next.Consumer(model.NovaComputeConsumer)).To(Equal(model.ConsumerConnected))
	})

	It("Should disconnect departed consumers", func() {
		s := ready(map[string]model.ConsumerState{model.NovaComputeConsumer: model.ConsumerPublished})

		next, effects := Transition(s, model.Event{Kind: model.EventRelationDeparted, Consumer: model.NovaComputeConsumer})
		Expect(next.Consumer(model.NovaComputeConsumer)).To(Equal(model.ConsumerDisconnected))
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectAssessStatus}}))
	})

	It("Should ignore unknown consumers", func() {
		s := ready(nil)

		next, effects := Transition(s, model.Event{Kind: model.EventRelationChanged, Consumer: "cinder"})
		Expect(next.Consumers).To(BeEmpty())
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectAssessStatus}}))

		next, _ = Transition(s, model.Event{Kind: model.EventConsumerPublished, Consumer: "cinder"})
		Expect(next.Consumers).To(BeEmpty())
	})

	It("Should not publish disconnected consumers", func() {
		next, _ := Transition(ready(nil), model.Event{Kind: model.EventConsumerPublished, Consumer: model.GlanceConsumer})
		Expect(next.Consumer(model.GlanceConsumer)).To(Equal(model.ConsumerDisconnected))
	})

	It("Should only assess status on update-status once ready", func() {
		_, effects := Transition(ready(nil), model.Event{Kind: model.EventUpdateStatus})
		Expect(effects).To(Equal([]model.Effect{{Kind: model.EffectAssessStatus}}))
	})
})
