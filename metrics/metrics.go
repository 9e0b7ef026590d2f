// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	NameSpace = "choria"
	Subsystem = "openstack_nfs"

	// Registry holds all metrics, hooks are short lived so they are exported to a textfile rather than served
	Registry = prometheus.NewRegistry()

	// HookRunTime is a summary of the time taken to handle an entire hook
	HookRunTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "hook_run_duration_seconds"),
		Help: "Time taken to handle a hook",
	}, []string{"hook"})

	// StepRunTime is a summary of the time taken to run a provisioning step
	StepRunTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "step_run_duration_seconds"),
		Help: "Time taken to run a provisioning step",
	}, []string{"step", "consumer"})

	// StepChanged counts how many steps changed the system
	StepChanged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "step_changed_count"),
		Help: "How many steps changed the system",
	}, []string{"step", "consumer"})

	// StepSkipped counts how many steps had nothing to do
	StepSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "step_skipped_count"),
		Help: "How many steps had nothing to do",
	}, []string{"step", "consumer"})

	// StepFailed counts how many steps failed and left the unit blocked or in error
	StepFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "step_failed_count"),
		Help: "How many steps failed",
	}, []string{"step", "consumer", "status"})

	// ProvisionPhase is the milestone reached by the unit
	ProvisionPhase = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "provision_phase"),
		Help: "The provisioning milestone reached, 0 is uninstalled and 3 is ready",
	})

	// HealthCheckTime is a summary of the time taken to health check the mount
	HealthCheckTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "healthcheck_duration_seconds"),
		Help: "Time taken to health check the mount",
	}, []string{"check"})

	// HealthStatusCount is how many checks are in a certain state
	HealthStatusCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "healthcheck_status_count"),
		Help: "How many checks are in a certain state",
	}, []string{"status", "check"})

	// FactGatherTime is a summary of the time taken to gather facts
	FactGatherTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: prometheus.BuildFQName(NameSpace, Subsystem, "facts_gather_duration_seconds"),
		Help: "Time taken to gather facts",
	}, []string{})

	registerOnce sync.Once
)

// RegisterMetrics registers all metrics with Registry, it is safe to call many times
func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(HookRunTime)
		Registry.MustRegister(StepRunTime)
		Registry.MustRegister(StepChanged)
		Registry.MustRegister(StepSkipped)
		Registry.MustRegister(StepFailed)
		Registry.MustRegister(ProvisionPhase)
		Registry.MustRegister(HealthCheckTime)
		Registry.MustRegister(HealthStatusCount)
		Registry.MustRegister(FactGatherTime)
	})
}

// WriteTextfile writes all metrics to path in the format read by the node exporter textfile collector
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}

	RegisterMetrics()

	return prometheus.WriteToTextfile(path, Registry)
}
