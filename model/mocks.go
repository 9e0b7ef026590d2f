// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

//go:generate mockgen -typed=false -destination=modelmocks/model.go -package=modelmocks github.com/choria-io/openstack-nfs/model Logger,CommandRunner,HookTools,PackageInstaller,PackageProvider,ProviderFactory,EventPublisher
