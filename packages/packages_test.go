// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package packages

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/choria-io/openstack-nfs/internal/registry"
	"github.com/choria-io/openstack-nfs/model"
	"github.com/choria-io/openstack-nfs/model/modelmocks"
)

func TestPackages(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Packages")
}

var _ = Describe("Installer", func() {
	var (
		mockctl  *gomock.Controller
		logger   *modelmocks.MockLogger
		runner   *modelmocks.MockCommandRunner
		factory  *modelmocks.MockProviderFactory
		provider *modelmocks.MockPackageProvider
		ctx      context.Context
	)

	BeforeEach(func() {
		mockctl = gomock.NewController(GinkgoT())
		logger = modelmocks.NewLogger(mockctl)
		runner = modelmocks.NewMockCommandRunner(mockctl)
		provider = modelmocks.NewMockPackageProvider(mockctl)
		provider.EXPECT().Name().Return("mock").AnyTimes()
		ctx = context.Background()

		registry.Clear()
		factory = modelmocks.NewMockProviderFactory(mockctl)
		factory.EXPECT().Name().Return("mock").AnyTimes()
		registry.MustRegister(factory)
	})

	AfterEach(func() {
		mockctl.Finish()
		registry.Clear()
	})

	It("Should select a provider once", func() {
		factory.EXPECT().IsManageable(gomock.Any()).Return(true, 1, nil).AnyTimes()
		factory.EXPECT().New(gomock.Any(), runner).Return(provider, nil).Times(1)
		provider.EXPECT().Status(ctx, "nfs-common").Return(&model.PackageState{Name: "nfs-common", Installed: false}, nil)
		provider.EXPECT().Install(ctx, "nfs-common").Return(nil)

		i := NewInstaller("", nil, runner, logger)
		Expect(i.Provider()).To(BeEmpty())

		installed, err := i.Installed(ctx, "nfs-common")
		Expect(err).ToNot(HaveOccurred())
		Expect(installed).To(BeFalse())
		Expect(i.Provider()).To(Equal("mock"))

		Expect(i.Install(ctx, "nfs-common")).To(Succeed())
	})

	It("Should fail without a suitable provider", func() {
		factory.EXPECT().IsManageable(gomock.Any()).Return(false, 0, nil).AnyTimes()

		i := NewInstaller("", nil, runner, logger)
		_, err := i.Installed(ctx, "nfs-common")
		Expect(err).To(MatchError(model.ErrNoSuitableProvider))

		err = i.Install(ctx, "nfs-common")
		Expect(err).To(MatchError(model.ErrNoSuitableProvider))
	})

	It("Should fail for unknown named providers", func() {
		_, err := NewInstaller("dnf", nil, runner, logger).Installed(ctx, "nfs-common")
		Expect(err).To(MatchError(model.ErrProviderNotFound))
	})

	It("Should pass on provider failures", func() {
		factory.EXPECT().IsManageable(gomock.Any()).Return(true, 1, nil).AnyTimes()
		factory.EXPECT().New(gomock.Any(), runner).Return(provider, nil)
		provider.EXPECT().Status(ctx, "nfs-common").Return(nil, errors.New("dpkg-query failed"))

		_, err := NewInstaller("mock", nil, runner, logger).Installed(ctx, "nfs-common")
		Expect(err).To(MatchError("dpkg-query failed"))
	})
})
