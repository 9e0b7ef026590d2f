// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package apt

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/model/modelmocks"
)

func TestAptProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Packages/APT")
}

var _ = Describe("APT Provider", func() {
	var (
		mockctl  *gomock.Controller
		runner   *modelmocks.MockCommandRunner
		provider *Provider
		err      error
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		runner = modelmocks.NewMockCommandRunner(mockctl)

		provider, err = NewAptProvider(modelmocks.NewLogger(mockctl), runner)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		mockctl.Finish()
	})

	Describe("Name", func() {
		It("Should return apt", func() {
			Expect(provider.Name()).To(Equal("apt"))
		})
	})

	Describe("Status", func() {
		It("Should parse installed packages", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd model.Command) ([]byte, []byte, int, error) {
				Expect(cmd.Name).To(Equal("dpkg-query"))
				Expect(cmd.Args).To(Equal([]string{"-W", "-f=${Package} ${Version} ${Architecture} ${db:Status-Status}", "nfs-common"}))
				Expect(cmd.Env).To(ContainElement("DEBIAN_FRONTEND=noninteractive"))
				return []byte("nfs-common 1:2.6.4-3ubuntu5 amd64 installed"), nil, 0, nil
			})

			res, err := provider.Status(context.Background(), "nfs-common")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Installed).To(BeTrue())
			Expect(res.Name).To(Equal("nfs-common"))
			Expect(res.Version).To(Equal("1:2.6.4-3ubuntu5"))
			Expect(res.Arch).To(Equal("amd64"))
			Expect(res.Provider).To(Equal("apt"))
		})

		It("Should handle unknown packages", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, []byte("dpkg-query: no packages found matching nfs-common"), 1, nil)

			res, err := provider.Status(context.Background(), "nfs-common")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Installed).To(BeFalse())
			Expect(res.Version).To(Equal("absent"))
			Expect(res.Status).To(Equal("unknown"))
		})

		It("Should handle removed packages with config remaining", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return([]byte("nfs-common 1:2.6.4-3ubuntu5 amd64 config-files"), nil, 0, nil)

			res, err := provider.Status(context.Background(), "nfs-common")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Installed).To(BeFalse())
			Expect(res.Status).To(Equal("config-files"))
		})
	})

	Describe("Install", func() {
		It("Should install the package", func() {
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd model.Command) ([]byte, []byte, int, error) {
				Expect(cmd.Name).To(Equal("apt-get"))
				Expect(cmd.Args).To(Equal([]string{"install", "-y", "-q", "-o", "DPkg::Options::=--force-confold", "nfs-common"}))
				Expect(cmd.Timeout).To(Equal(InstallTimeout))
				return nil, nil, 0, nil
			})

			Expect(provider.Install(context.Background(), "nfs-common")).To(Succeed())
		})

		It("Should update indexes and retry once", func() {
			gomock.InOrder(
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, []byte("E: Unable to locate package"), 100, nil),
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd model.Command) ([]byte, []byte, int, error) {
					Expect(cmd.Args).To(Equal([]string{"update", "-q"}))
					return nil, nil, 0, nil
				}),
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, nil, 0, nil),
			)

			Expect(provider.Install(context.Background(), "nfs-common")).To(Succeed())
		})

		It("Should fail when the retry fails", func() {
			gomock.InOrder(
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, nil, 100, nil),
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, nil, 0, nil),
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, nil, 100, nil),
			)

			Expect(provider.Install(context.Background(), "nfs-common")).To(MatchError(ContainSubstring("apt-get exited 100")))
		})

		It("Should fail when the index update fails", func() {
			gomock.InOrder(
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, nil, 100, nil),
				runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, []byte("network down"), 100, nil),
			)

			Expect(provider.Install(context.Background(), "nfs-common")).To(MatchError(ContainSubstring("apt-get update exited 100: network down")))
		})
	})

	Describe("IsManageable", func() {
		It("Should refuse non debian hosts", func() {
			ok, _, err := (&factory{}).IsManageable(map[string]any{"host": map[string]any{"info": map[string]any{"platformFamily": "rhel"}}})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
