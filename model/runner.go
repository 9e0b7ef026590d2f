// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"time"
)

// Command describes a single process invocation
type Command struct {
	// Name is the executable, looked up in a fixed system PATH when not absolute
	Name string
	Args []string
	// Env is appended to the minimal environment every command receives
	Env []string
	// Timeout bounds the run, zero means only ctx applies
	Timeout time.Duration
}

// CommandRunner runs processes to completion. A non zero exit code is reported
// through exitCode and is not an error, an expired Timeout is ErrCommandTimeout
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (stdout []byte, stderr []byte, exitCode int, err error)
}
