// Copyright (c) 2025, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

type HealthCheckStatus int

const (
	HealthCheckOK       HealthCheckStatus = 0
	HealthCheckWarning  HealthCheckStatus = 1
	HealthCheckCritical HealthCheckStatus = 2
	HealthCheckUnknown  HealthCheckStatus = 3
)

func (s HealthCheckStatus) String() string {
	switch s {
	case HealthCheckOK:
		return "OK"
	case HealthCheckWarning:
		return "WARNING"
	case HealthCheckCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// HealthCheckResult represents the outcome of a health check execution
type HealthCheckResult struct {
	Status HealthCheckStatus `json:"status" yaml:"status"`
	Output string            `json:"output" yaml:"output"`
}
