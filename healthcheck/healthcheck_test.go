// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package healthcheck

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/model/modelmocks"
	"github.com/choria-io/openstack-nfs/mounter"
)

func TestHealthCheck(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HealthCheck")
}

var _ = Describe("HealthCheck", func() {
	var (
		mockctl *gomock.Controller
		runner  *modelmocks.MockCommandRunner
		live    *mounter.MountState
		lerr    error
		checker *Checker
		spec    model.MountSpec
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		runner = modelmocks.NewMockCommandRunner(mockctl)
		live = &mounter.MountState{Source: "srv:/export", Mountpoint: "/mnt/x", FSType: "nfs4", Options: "rw,relatime"}
		lerr = nil
		spec = model.MountSpec{Device: "srv:/export/", Mountpoint: "/mnt/x", FilesystemType: "nfs", Options: "defaults", Timeout: time.Second}

		checker = NewChecker(runner, func(mp string) (*mounter.MountState, error) {
			Expect(mp).To(Equal("/mnt/x"))
			return live, lerr
		}, modelmocks.NewLogger(mockctl))
	})

	AfterEach(func() {
		mockctl.Finish()
	})

	Describe("CheckMount", func() {
		It("Should be ok for responsive mounts", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd model.Command) ([]byte, []byte, int, error) {
				Expect(cmd.Name).To(Equal("stat"))
				Expect(cmd.Args).To(Equal([]string{"-f", "-c", "%T", "/mnt/x"}))
				Expect(cmd.Timeout).To(Equal(DefaultProbeTimeout))
				return []byte("nfs\n"), nil, 0, nil
			})

			res := checker.CheckMount(context.Background(), spec)
			Expect(res.Status).To(Equal(model.HealthCheckOK))
			Expect(res.Output).To(Equal("srv:/export mounted on /mnt/x type nfs4 (rw,relatime)"))
		})

		It("Should warn when not configured", func() {
			spec.Device = ""
			Expect(checker.CheckMount(context.Background(), spec).Status).To(Equal(model.HealthCheckWarning))
		})

		It("Should be critical when not mounted", func() {
			live = nil
			res := checker.CheckMount(context.Background(), spec)
			Expect(res.Status).To(Equal(model.HealthCheckCritical))
			Expect(res.Output).To(Equal("/mnt/x is not mounted"))
		})

		It("Should be unknown when the mount table can not be read", func() {
			lerr = fmt.Errorf("permission denied")
			Expect(checker.CheckMount(context.Background(), spec).Status).To(Equal(model.HealthCheckUnknown))
		})

		It("Should warn about other filesystems", func() {
			live.Source = "other:/export"
			res := checker.CheckMount(context.Background(), spec)
			Expect(res.Status).To(Equal(model.HealthCheckWarning))
			Expect(res.Output).To(ContainSubstring("expected srv:/export/"))
		})

		It("Should warn about other types", func() {
			live.FSType = "ext4"
			res := checker.CheckMount(context.Background(), spec)
			Expect(res.Status).To(Equal(model.HealthCheckWarning))
			Expect(res.Output).To(ContainSubstring("type ext4"))
		})

		It("Should be critical for hung mounts", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, nil, -1, model.ErrCommandTimeout)

			res := checker.CheckMount(context.Background(), spec)
			Expect(res.Status).To(Equal(model.HealthCheckCritical))
			Expect(res.Output).To(ContainSubstring("did not respond"))
		})

		It("Should be critical for inaccessible mounts", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, []byte("Stale file handle\n"), 1, nil)

			res := checker.CheckMount(context.Background(), spec)
			Expect(res.Status).To(Equal(model.HealthCheckCritical))
			Expect(res.Output).To(Equal("/mnt/x is not accessible: Stale file handle"))
		})
	})

	Describe("Nagios", func() {
		DescribeTable("exit codes",
			func(status model.HealthCheckStatus, code int, ws model.Status) {
				res := &model.HealthCheckResult{Status: status, Output: "x"}
				Expect(NagiosExitCode(res)).To(Equal(code))
				Expect(WorkloadStatus(res)).To(Equal(ws))
			},
			Entry("ok", model.HealthCheckOK, 0, model.StatusActive),
			Entry("warning", model.HealthCheckWarning, 1, model.StatusWaiting),
			Entry("critical", model.HealthCheckCritical, 2, model.StatusBlocked),
			Entry("unknown", model.HealthCheckUnknown, 3, model.StatusBlocked),
			Entry("invalid", model.HealthCheckStatus(9), 3, model.StatusBlocked),
		)

		It("Should format output", func() {
			Expect(NagiosOutput("MOUNT", &model.HealthCheckResult{Status: model.HealthCheckCritical, Output: "/mnt/x is not mounted"})).To(Equal("MOUNT CRITICAL: /mnt/x is not mounted"))
		})
	})
})
