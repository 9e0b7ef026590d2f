// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/choria-io/openstack-nfs/model"
)

// SystemPath is the PATH every command runs with, hooks inherit an unpredictable one from the agent
const SystemPath = "/usr/bin:/bin:/usr/sbin:/sbin:/usr/local/bin:/usr/local/sbin"

// CommandRunner runs processes on the local machine
type CommandRunner struct {
	log model.Logger
}

var _ model.CommandRunner = (*CommandRunner)(nil)

// NewCommandRunner creates a runner that logs every invocation at debug level
func NewCommandRunner(log model.Logger) (*CommandRunner, error) {
	return &CommandRunner{log: log}, nil
}

func environment(extra []string) []string {
	env := []string{"PATH=" + SystemPath, "LANG=C", "LC_ALL=C"}
	return append(env, extra...)
}

// Run executes cmd from / and waits for it to finish
func (c *CommandRunner) Run(ctx context.Context, cmd model.Command) ([]byte, []byte, int, error) {
	if cmd.Name == "" {
		return nil, nil, 0, errors.New("command not specified")
	}

	line := shellquote.Join(append([]string{cmd.Name}, cmd.Args...)...)

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	proc := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	proc.Env = environment(cmd.Env)
	proc.Dir = "/"
	proc.Stdout = &stdout
	proc.Stderr = &stderr
	proc.WaitDelay = time.Second

	start := time.Now()
	err := proc.Run()

	exitCode := -1
	if proc.ProcessState != nil {
		exitCode = proc.ProcessState.ExitCode()
	}

	c.log.Debug("Ran command", "command", line, "exitcode", exitCode, "duration", time.Since(start).Round(time.Millisecond))

	// a killed process also yields an ExitError so our own deadline is checked first
	if cmd.Timeout > 0 && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return stdout.Bytes(), stderr.Bytes(), exitCode, fmt.Errorf("%w: %s after %v", model.ErrCommandTimeout, line, cmd.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitCode > 0 {
		return stdout.Bytes(), stderr.Bytes(), exitCode, nil
	}

	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}
