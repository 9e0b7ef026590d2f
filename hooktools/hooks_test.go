// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package hooktools

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/choria-io/openstack-nfs/model"
)

var _ = Describe("HookEvent", func() {
	DescribeTable("Supported hooks",
		func(hook string, expected model.Event) {
			event, err := HookEvent(hook)
			Expect(err).ToNot(HaveOccurred())
			Expect(event).To(Equal(expected))
		},
		Entry("install", "install", model.Event{Kind: model.EventInstall}),
		Entry("hook path", "/var/lib/juju/agents/unit-nfs-0/charm/hooks/config-changed", model.Event{Kind: model.EventConfigChanged}),
		Entry("upgrade-charm", "upgrade-charm", model.Event{Kind: model.EventUpgradeCharm}),
		Entry("start", "start", model.Event{Kind: model.EventStart}),
		Entry("update-status", "update-status", model.Event{Kind: model.EventUpdateStatus}),
		Entry("nova joined", "ephemeral-backend-relation-joined", model.Event{Kind: model.EventRelationChanged, Consumer: model.NovaComputeConsumer}),
		Entry("nova changed", "ephemeral-backend-relation-changed", model.Event{Kind: model.EventRelationChanged, Consumer: model.NovaComputeConsumer}),
		Entry("nova departed", "ephemeral-backend-relation-departed", model.Event{Kind: model.EventRelationDeparted, Consumer: model.NovaComputeConsumer}),
		Entry("glance changed", "glance-backend-relation-changed", model.Event{Kind: model.EventRelationChanged, Consumer: model.GlanceConsumer}),
		Entry("glance broken", "glance-backend-relation-broken", model.Event{Kind: model.EventRelationDeparted, Consumer: model.GlanceConsumer}),
	)

	DescribeTable("Unsupported hooks",
		func(hook string) {
			_, err := HookEvent(hook)
			Expect(err).To(MatchError(ErrUnsupportedHook))
		},
		Entry("stop", "stop"),
		Entry("unknown relation", "cinder-backend-relation-changed"),
		Entry("relation created", "glance-backend-relation-created"),
		Entry("binary", "openstack-nfs"),
	)
})
