// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package hooktools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/choria-io/openstack-nfs/model"
)

// DefaultTimeout bounds every hook tool invocation
const DefaultTimeout = time.Minute

// Client invokes the hook tools made available to hook processes
type Client struct {
	runner   model.CommandRunner
	log      model.Logger
	toolsDir string
	timeout  time.Duration
}

type Option func(*Client)

// WithToolsDir sets a directory holding the hook tools, by default they are found in PATH
func WithToolsDir(dir string) Option {
	return func(c *Client) { c.toolsDir = dir }
}

// WithTimeout sets the timeout for each tool invocation
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// New creates a new hook tools client
func New(runner model.CommandRunner, log model.Logger, opts ...Option) *Client {
	c := &Client{
		runner:  runner,
		log:     log,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ model.HookTools = (*Client)(nil)

func (c *Client) tool(name string) string {
	if c.toolsDir == "" {
		return name
	}

	return filepath.Join(c.toolsDir, name)
}

func (c *Client) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	stdout, stderr, exitCode, err := c.runner.Run(ctx, model.Command{
		Name:    c.tool(name),
		Args:    args,
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("%s exited %d: %s", name, exitCode, strings.TrimSpace(string(stderr)))
	}

	return stdout, nil
}

// ConfigGet retrieves all charm configuration as JSON
func (c *Client) ConfigGet(ctx context.Context) (json.RawMessage, error) {
	out, err := c.run(ctx, "config-get", "--all", "--format=json")
	if err != nil {
		return nil, err
	}

	out = []byte(strings.TrimSpace(string(out)))
	if len(out) == 0 {
		return json.RawMessage("{}"), nil
	}

	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("config-get returned invalid JSON")
	}

	return json.RawMessage(out), nil
}

// StatusSet sets the workload status of the unit
func (c *Client) StatusSet(ctx context.Context, status model.Status, message string) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid status %q", status)
	}

	c.log.Debug("Setting status", "status", status, "message", message)

	_, err := c.run(ctx, "status-set", status.String(), message)

	return err
}

// RelationIDs lists the ids of all established relations named relation
func (c *Client) RelationIDs(ctx context.Context, relation string) ([]string, error) {
	out, err := c.run(ctx, "relation-ids", relation, "--format=json")
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("relation-ids returned invalid JSON")
	}

	var ids []string
	for _, id := range gjson.ParseBytes(out).Array() {
		if id.String() != "" {
			ids = append(ids, id.String())
		}
	}

	return ids, nil
}

// RelationSet publishes settings on the relation identified by relationID
func (c *Client) RelationSet(ctx context.Context, relationID string, settings map[string]string) error {
	if relationID == "" {
		return fmt.Errorf("relation id is required")
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []string{"-r", relationID}
	for _, k := range keys {
		args = append(args, fmt.Sprintf("%s=%s", k, settings[k]))
	}

	c.log.Debug("Setting relation data", "relation", relationID, "keys", keys)

	_, err := c.run(ctx, "relation-set", args...)

	return err
}

// JujuLog writes message to the unit log at level
func (c *Client) JujuLog(ctx context.Context, level string, message string) error {
	_, err := c.run(ctx, "juju-log", "-l", strings.ToUpper(level), message)

	return err
}
