// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package apt

import (
	"github.com/choria-io/openstack-nfs/internal/facts"
	"github.com/choria-io/openstack-nfs/internal/registry"
	iu "github.com/choria-io/openstack-nfs/internal/util"
	"github.com/choria-io/openstack-nfs/model"
)

// Register registers this provider with the registry
func Register() {
	registry.MustRegister(&factory{})
}

type factory struct{}

func (p *factory) Name() string { return ProviderName }
func (p *factory) New(log model.Logger, runner model.CommandRunner) (model.Provider, error) {
	return NewAptProvider(log, runner)
}
func (p *factory) IsManageable(f map[string]any) (bool, int, error) {
	family := facts.Get(f, "host.info.platformFamily").String()
	if family != "" && family != "debian" {
		return false, 0, nil
	}

	for _, path := range []string{"apt-get", "dpkg-query"} {
		_, found, err := iu.ExecutableInPath(path)
		if err != nil {
			return false, 0, err
		}
		if !found {
			return false, 0, nil
		}
	}

	return true, 1, nil
}
