// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package healthcheck

import (
	"fmt"

	"github.com/choria-io/openstack-nfs/model"
)

// NagiosOutput renders result as a single line of Nagios plugin output
func NagiosOutput(name string, result *model.HealthCheckResult) string {
	return fmt.Sprintf("%s %s: %s", name, result.Status, result.Output)
}

// NagiosExitCode is the plugin exit code for result
func NagiosExitCode(result *model.HealthCheckResult) int {
	switch result.Status {
	case model.HealthCheckOK, model.HealthCheckWarning, model.HealthCheckCritical:
		return int(result.Status)
	default:
		return int(model.HealthCheckUnknown)
	}
}

// WorkloadStatus maps result to the unit status shown while the unit is otherwise ready
func WorkloadStatus(result *model.HealthCheckResult) model.Status {
	switch result.Status {
	case model.HealthCheckOK:
		return model.StatusActive
	case model.HealthCheckWarning:
		return model.StatusWaiting
	default:
		return model.StatusBlocked
	}
}
