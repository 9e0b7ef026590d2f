// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

// Status is a unit workload status severity
type Status string

const (
	StatusMaintenance Status = "maintenance"
	StatusBlocked     Status = "blocked"
	StatusWaiting     Status = "waiting"
	StatusActive      Status = "active"
	StatusError       Status = "error"
)

func (s Status) String() string {
	return string(s)
}

// IsValid determines if s is a status the unit may report
func (s Status) IsValid() bool {
	switch s {
	case StatusMaintenance, StatusBlocked, StatusWaiting, StatusActive, StatusError:
		return true
	default:
		return false
	}
}
