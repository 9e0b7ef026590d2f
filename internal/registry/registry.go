// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package registry holds the package provider factories, providers register themselves and
// the most suitable one for the host is selected using its facts
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/choria-io/openstack-nfs/model"
)

var (
	factories = make(map[string]model.ProviderFactory)
	mu        sync.Mutex
)

// Clear removes all registered providers
func Clear() {
	mu.Lock()
	defer mu.Unlock()

	factories = make(map[string]model.ProviderFactory)
}

// Register registers a provider factory, names must be unique
func Register(p model.ProviderFactory) error {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := factories[p.Name()]; ok {
		return fmt.Errorf("%w: %s", model.ErrDuplicateProvider, p.Name())
	}

	factories[p.Name()] = p

	return nil
}

// MustRegister registers a provider factory and panics if registration fails
func MustRegister(p model.ProviderFactory) {
	err := Register(p)
	if err != nil {
		panic(err)
	}
}

// Names returns the sorted names of all registered providers
func Names() []string {
	mu.Lock()
	defer mu.Unlock()

	return slices.Sorted(maps.Keys(factories))
}

// selectProviders returns the providers that can manage the node given facts, lowest priority value first
func selectProviders(facts map[string]any, log model.Logger) []model.ProviderFactory {
	mu.Lock()
	defer mu.Unlock()

	type matched struct {
		prio int
		prov model.ProviderFactory
	}

	var found []matched

	for _, name := range slices.Sorted(maps.Keys(factories)) {
		f := factories[name]

		ok, priority, err := f.IsManageable(facts)
		if err != nil {
			log.Warn("Could not check if provider is manageable", "provider", name, "error", err)
			continue
		}

		if ok {
			found = append(found, matched{priority, f})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].prio < found[j].prio })

	result := make([]model.ProviderFactory, 0, len(found))
	for _, v := range found {
		result = append(result, v.prov)
	}

	return result
}

// selectProvider finds a provider matching name and checks it's manageable before returning it
func selectProvider(name string, facts map[string]any, log model.Logger) (model.ProviderFactory, error) {
	mu.Lock()
	f, ok := factories[name]
	mu.Unlock()

	if !ok {
		log.Debug("No providers found", "provider", name)
		return nil, fmt.Errorf("%w: %s", model.ErrProviderNotFound, name)
	}

	ok, _, err := f.IsManageable(facts)
	if err != nil {
		log.Debug("Provider detection failed", "provider", name, "error", err)
		return nil, fmt.Errorf("%w: %w", model.ErrProviderNotManageable, err)
	}

	if !ok {
		log.Debug("Provider cannot be used", "provider", name)
		return nil, fmt.Errorf("%w: %s", model.ErrProviderNotManageable, "not applicable to instance")
	}

	return f, nil
}

// FindSuitableProvider creates the named provider, or when name is empty the most suitable one for the node
func FindSuitableProvider(name string, facts map[string]any, log model.Logger, runner model.CommandRunner) (model.Provider, error) {
	var selected model.ProviderFactory

	if name == "" {
		provs := selectProviders(facts, log)
		if len(provs) == 0 {
			return nil, model.ErrNoSuitableProvider
		}

		selected = provs[0]
	} else {
		prov, err := selectProvider(name, facts, log)
		if err != nil {
			return nil, err
		}

		selected = prov
	}

	return selected.New(log, runner)
}
