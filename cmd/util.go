// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"

	"github.com/choria-io/openstack-nfs/hooktools"
	"github.com/choria-io/openstack-nfs/internal/cmdrunner"
	"github.com/choria-io/openstack-nfs/internal/facts"
	iu "github.com/choria-io/openstack-nfs/internal/util"
	"github.com/choria-io/openstack-nfs/manager"
	"github.com/choria-io/openstack-nfs/metrics"
	"github.com/choria-io/openstack-nfs/model"
)

func newManager(opts ...manager.Option) (*manager.Manager, model.Logger, error) {
	env := hooktools.EnvironmentFromOS()
	console := newLogger(env)

	runner, err := cmdrunner.NewCommandRunner(console.With("component", "runner"))
	if err != nil {
		return nil, nil, err
	}

	// the hook tools log to the console, logging them through juju-log would recurse
	tools := hooktools.New(runner, console.With("component", "hooktools"))

	log := console
	if env.InHookContext() {
		log = manager.NewJujuLogger(ctx, tools, logLevel(env))
	}

	opts = append([]manager.Option{
		manager.WithEnvironment(env),
		manager.WithRunner(runner),
		manager.WithHookTools(tools),
	}, opts...)

	cf := configFile
	if cf == "" && !env.InHookContext() {
		cf = defaultConfigFile()
	}
	if cf != "" {
		opts = append(opts, manager.WithConfigFile(cf))
	}

	if stateDir != "" {
		opts = append(opts, manager.WithStateDirectory(stateDir))
	}

	mgr, err := manager.NewManager(log, opts...)
	if err != nil {
		return nil, nil, err
	}

	return mgr, log, nil
}

// defaultConfigFile finds a configuration file in the user or system configuration directories
func defaultConfigFile() string {
	candidates := []string{
		filepath.Join(xdg.ConfigHome, "choria", "openstack-nfs", "config.yaml"),
		filepath.Join(facts.SystemConfigDir, "config.yaml"),
	}

	for _, f := range candidates {
		if iu.FileExists(f) {
			return f
		}
	}

	return ""
}

func logLevel(env *hooktools.Environment) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case info, env.InHookContext():
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func newLogger(env *hooktools.Environment) model.Logger {
	level := logLevel(env)
	if env.InHookContext() && !debug {
		// juju captures stderr into the unit log as well
		level = slog.LevelWarn
	}

	return manager.NewConsoleLogger(os.Stderr, level)
}

func writeMetrics(path string, log model.Logger) {
	if path == "" {
		return
	}

	err := metrics.WriteTextfile(path)
	if err != nil {
		log.Warn("Could not write metrics", "file", path, "error", err)
	}
}

// printDocument renders a JSON document indented or as YAML, scalars are printed bare
func printDocument(doc []byte, asYAML bool) error {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 {
		return nil
	}

	if doc[0] != '{' && doc[0] != '[' {
		var scalar any
		if json.Unmarshal(doc, &scalar) == nil {
			fmt.Println(scalar)
			return nil
		}
	}

	if asYAML {
		out, err := yaml.JSONToYAML(doc)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	var out bytes.Buffer
	err := json.Indent(&out, doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(out.String())

	return nil
}
