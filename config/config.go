// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/choria-io/fisk"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"

	"github.com/choria-io/openstack-nfs/model"
)

const (
	DefaultMountpoint   = "/var/lib/nova/instances"
	DefaultType         = "nfs"
	DefaultOptions      = "defaults"
	DefaultMountTimeout = 30 * time.Second
	DefaultEventSubject = "choria.openstack_nfs.events"
)

// Config is the charm configuration, resolved once per provisioning cycle
type Config struct {
	// Filesystem is the device to mount, typically host:/export
	Filesystem string `json:"filesystem" yaml:"filesystem"`
	// NovaComputeFilesystem is a legacy alias for Filesystem
	NovaComputeFilesystem string `json:"nova-compute-filesystem,omitempty" yaml:"nova-compute-filesystem,omitempty"`
	// GlanceFilesystem is a legacy alias for Filesystem
	GlanceFilesystem string        `json:"glance-filesystem,omitempty" yaml:"glance-filesystem,omitempty"`
	Mountpoint       string        `json:"mountpoint" yaml:"mountpoint"`
	Type             string        `json:"type" yaml:"type"`
	Options          string        `json:"options" yaml:"options"`
	MountTimeout     time.Duration `json:"mount-timeout" yaml:"mount-timeout"`
	// InstancesPath overrides the nova instances path, relative paths are not accepted
	InstancesPath string `json:"instances-path,omitempty" yaml:"instances-path,omitempty"`
	NovaPath      string `json:"nova-path,omitempty" yaml:"nova-path,omitempty"`
	GlancePath    string `json:"glance-path,omitempty" yaml:"glance-path,omitempty"`
	VerifyMount   bool   `json:"verify-mount" yaml:"verify-mount"`

	NatsContext     string `json:"nats-context,omitempty" yaml:"nats-context,omitempty"`
	EventSubject    string `json:"event-subject,omitempty" yaml:"event-subject,omitempty"`
	MetricsTextfile string `json:"metrics-textfile,omitempty" yaml:"metrics-textfile,omitempty"`
	FstabPath       string `json:"fstab-path,omitempty" yaml:"fstab-path,omitempty"`
}

// New creates a configuration holding only defaults
func New() *Config {
	return &Config{
		Mountpoint:   DefaultMountpoint,
		Type:         DefaultType,
		Options:      DefaultOptions,
		MountTimeout: DefaultMountTimeout,
		VerifyMount:  true,
		EventSubject: DefaultEventSubject,
	}
}

// FromJSON parses the output of config-get, unset or empty keys keep their defaults
func FromJSON(data []byte) (*Config, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid configuration JSON")
	}

	cfg := New()
	res := gjson.ParseBytes(data)

	str := func(key string, target *string) {
		v := res.Get(key)
		if v.Exists() && strings.TrimSpace(v.String()) != "" {
			*target = strings.TrimSpace(v.String())
		}
	}

	str("filesystem", &cfg.Filesystem)
	str("nova-compute-filesystem", &cfg.NovaComputeFilesystem)
	str("glance-filesystem", &cfg.GlanceFilesystem)
	str("mountpoint", &cfg.Mountpoint)
	str("type", &cfg.Type)
	str("options", &cfg.Options)
	str("instances-path", &cfg.InstancesPath)
	str("nova-path", &cfg.NovaPath)
	str("glance-path", &cfg.GlancePath)
	str("nats-context", &cfg.NatsContext)
	str("event-subject", &cfg.EventSubject)
	str("metrics-textfile", &cfg.MetricsTextfile)
	str("fstab-path", &cfg.FstabPath)

	if v := res.Get("verify-mount"); v.Exists() {
		cfg.VerifyMount = v.Bool()
	}

	timeout, err := parseTimeout(res.Get("mount-timeout"))
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		cfg.MountTimeout = timeout
	}

	return cfg, nil
}

// parseTimeout accepts a number of seconds or a duration string like 1m30s
func parseTimeout(v gjson.Result) (time.Duration, error) {
	switch v.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		if v.Float() < 0 {
			return 0, fmt.Errorf("mount-timeout may not be negative")
		}
		return time.Duration(v.Float() * float64(time.Second)), nil
	case gjson.String:
		if v.String() == "" {
			return 0, nil
		}
		d, err := fisk.ParseDuration(v.String())
		if err != nil {
			return 0, fmt.Errorf("invalid mount-timeout: %w", err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid mount-timeout %q", v.Raw)
	}
}

// FromYAML parses a local YAML configuration using the same keys as the charm configuration
func FromYAML(data []byte) (*Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}

	j, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration YAML: %w", err)
	}

	return FromJSON(j)
}

// LoadFile reads a YAML configuration file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return FromYAML(data)
}

// Device is the configured filesystem, falling back to the legacy per service keys
func (c *Config) Device() string {
	switch {
	case c.Filesystem != "":
		return c.Filesystem
	case c.NovaComputeFilesystem != "":
		return c.NovaComputeFilesystem
	default:
		return c.GlanceFilesystem
	}
}

// Validate checks the configuration for values that can never work, an unset filesystem is not an error
func (c *Config) Validate() error {
	var errs []error

	if c.Mountpoint == "" {
		errs = append(errs, fmt.Errorf("mountpoint is required"))
	} else if !filepath.IsAbs(c.Mountpoint) {
		errs = append(errs, fmt.Errorf("mountpoint %q is not absolute", c.Mountpoint))
	}

	if c.Type == "" {
		errs = append(errs, fmt.Errorf("type is required"))
	}

	if strings.ContainsAny(c.Options, " \t\n") {
		errs = append(errs, fmt.Errorf("options may not contain white space"))
	}

	if c.MountTimeout <= 0 {
		errs = append(errs, fmt.Errorf("mount-timeout must be positive"))
	}

	if c.InstancesPath != "" && !filepath.IsAbs(c.InstancesPath) {
		errs = append(errs, fmt.Errorf("instances-path %q is not absolute", c.InstancesPath))
	}

	return errors.Join(errs...)
}

// MountSpec is the filesystem to mount
func (c *Config) MountSpec() model.MountSpec {
	return model.MountSpec{
		Device:         c.Device(),
		Mountpoint:     c.Mountpoint,
		FilesystemType: c.Type,
		Options:        c.Options,
		Timeout:        c.MountTimeout,
	}
}

// ConsumerPath is the directory published to consumer
func (c *Config) ConsumerPath(consumer string) (string, error) {
	switch consumer {
	case model.NovaComputeConsumer:
		if c.InstancesPath != "" {
			return filepath.Clean(c.InstancesPath), nil
		}
		return filepath.Join(c.Mountpoint, c.NovaPath), nil

	case model.GlanceConsumer:
		return filepath.Join(c.Mountpoint, c.GlancePath), nil

	default:
		return "", fmt.Errorf("%w: %s", model.ErrUnknownConsumer, consumer)
	}
}

// Hash identifies the applied configuration, a change in hash means the provisioning cycle has to re-run
func (c *Config) Hash() string {
	nova, _ := c.ConsumerPath(model.NovaComputeConsumer)
	glance, _ := c.ConsumerPath(model.GlanceConsumer)

	return c.MountSpec().Hash(nova, glance)
}

// MarshalJSON renders the timeout as a duration string so the output can be parsed again
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config

	return json.Marshal(struct {
		alias
		MountTimeout string `json:"mount-timeout"`
	}{alias(c), c.MountTimeout.String()})
}

// ToYAML renders the configuration as YAML
func (c *Config) ToYAML() ([]byte, error) {
	j, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return yaml.JSONToYAML(j)
}
