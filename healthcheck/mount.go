// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/choria-io/openstack-nfs/metrics"
	"github.com/choria-io/openstack-nfs/mounter"
	"github.com/choria-io/openstack-nfs/model"
)

// DefaultProbeTimeout bounds the responsiveness probe of the mountpoint
const DefaultProbeTimeout = 10 * time.Second

// Checker checks the health of the managed mount
type Checker struct {
	runner       model.CommandRunner
	lookup       mounter.LookupFunc
	log          model.Logger
	probeTimeout time.Duration
}

// NewChecker creates a mount health checker, lookup finds live mounts
func NewChecker(runner model.CommandRunner, lookup mounter.LookupFunc, log model.Logger) *Checker {
	return &Checker{
		runner:       runner,
		lookup:       lookup,
		log:          log,
		probeTimeout: DefaultProbeTimeout,
	}
}

// CheckMount determines if spec is mounted and responsive
func (c *Checker) CheckMount(ctx context.Context, spec model.MountSpec) *model.HealthCheckResult {
	timer := prometheus.NewTimer(metrics.HealthCheckTime.WithLabelValues("mount"))
	defer timer.ObserveDuration()

	res := c.checkMount(ctx, spec)
	metrics.HealthStatusCount.WithLabelValues(res.Status.String(), "mount").Inc()

	c.log.Debug("Mount health check", "status", res.Status, "output", res.Output)

	return res
}

func (c *Checker) checkMount(ctx context.Context, spec model.MountSpec) *model.HealthCheckResult {
	if spec.Device == "" {
		return &model.HealthCheckResult{Status: model.HealthCheckWarning, Output: "no filesystem configured"}
	}

	live, err := c.lookup(spec.Mountpoint)
	if err != nil {
		return &model.HealthCheckResult{Status: model.HealthCheckUnknown, Output: fmt.Sprintf("could not read mount table: %v", err)}
	}

	if live == nil {
		return &model.HealthCheckResult{Status: model.HealthCheckCritical, Output: fmt.Sprintf("%s is not mounted", spec.Mountpoint)}
	}

	if !sameSource(live.Source, spec.Device) {
		return &model.HealthCheckResult{Status: model.HealthCheckWarning, Output: fmt.Sprintf("%s has %s mounted, expected %s", spec.Mountpoint, live.Source, spec.Device)}
	}

	if !sameType(live.FSType, spec.FilesystemType) {
		return &model.HealthCheckResult{Status: model.HealthCheckWarning, Output: fmt.Sprintf("%s is mounted with type %s, expected %s", spec.Mountpoint, live.FSType, spec.FilesystemType)}
	}

	// a hung server blocks any stat of the mountpoint so it is probed in a child process
	_, stderr, exitCode, err := c.runner.Run(ctx, model.Command{
		Name:    "stat",
		Args:    []string{"-f", "-c", "%T", spec.Mountpoint},
		Timeout: c.probeTimeout,
	})
	switch {
	case errors.Is(err, model.ErrCommandTimeout):
		return &model.HealthCheckResult{Status: model.HealthCheckCritical, Output: fmt.Sprintf("%s did not respond within %v", spec.Mountpoint, c.probeTimeout)}
	case err != nil:
		return &model.HealthCheckResult{Status: model.HealthCheckUnknown, Output: fmt.Sprintf("could not probe %s: %v", spec.Mountpoint, err)}
	case exitCode != 0:
		return &model.HealthCheckResult{Status: model.HealthCheckCritical, Output: fmt.Sprintf("%s is not accessible: %s", spec.Mountpoint, strings.TrimSpace(string(stderr)))}
	}

	return &model.HealthCheckResult{Status: model.HealthCheckOK, Output: fmt.Sprintf("%s mounted on %s type %s (%s)", live.Source, live.Mountpoint, live.FSType, live.Options)}
}

func sameSource(live string, want string) bool {
	clean := func(s string) string {
		host, path, ok := strings.Cut(s, ":")
		if !ok {
			return filepath.Clean(s)
		}
		return host + ":" + filepath.Clean(path)
	}

	return clean(live) == clean(want)
}

// the kernel reports the protocol version, nfs requested may show up as nfs4
func sameType(live string, want string) bool {
	if want == "" || live == want {
		return true
	}

	return want == "nfs" && strings.HasPrefix(live, "nfs")
}
