// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package facts

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/tidwall/gjson"

	iu "github.com/choria-io/openstack-nfs/internal/util"
	"github.com/choria-io/openstack-nfs/metrics"
	"github.com/choria-io/openstack-nfs/model"
)

// SystemConfigDir holds system wide overrides
const SystemConfigDir = "/etc/choria/openstack-nfs"

// ConfigDirs are the directories searched for facts.yaml overrides, later ones win
func ConfigDirs() []string {
	return []string{SystemConfigDir, filepath.Join(xdg.ConfigHome, "choria", "openstack-nfs")}
}

// StandardFacts gathers host and partition facts, top level keys in facts.yaml files replace gathered ones
func StandardFacts(ctx context.Context, log model.Logger) (map[string]any, error) {
	timer := prometheus.NewTimer(metrics.FactGatherTime.WithLabelValues())
	defer timer.ObserveDuration()

	sf := standardFacts(ctx)

	for _, dir := range ConfigDirs() {
		yf := filepath.Join(dir, "facts.yaml")
		if !iu.FileExists(yf) {
			continue
		}

		log.Debug("Reading facts", "file", yf)
		yb, err := os.ReadFile(yf)
		if err != nil {
			log.Error("Failed to read facts file", "file", yf, "error", err)
			continue
		}

		var f map[string]any
		err = yaml.Unmarshal(yb, &f)
		if err != nil {
			log.Error("Failed to unmarshal facts file", "file", yf, "error", err)
			continue
		}

		maps.Copy(sf, f)
	}

	return sf, nil
}

func standardFacts(ctx context.Context) map[string]any {
	hostFacts := map[string]any{
		"info": map[string]any{},
	}
	partitionFacts := map[string]any{
		"partitions": []any{},
	}

	hostInfo, err := host.InfoWithContext(ctx)
	if err == nil {
		hostFacts["info"] = hostInfo
	}

	parts, err := disk.PartitionsWithContext(ctx, true)
	if err == nil {
		partitionFacts["partitions"] = parts
	}

	return map[string]any{
		"host":      hostFacts,
		"partition": partitionFacts,
	}
}

// Get performs a gjson query against facts
func Get(facts map[string]any, query string) gjson.Result {
	if len(facts) == 0 {
		return gjson.Result{}
	}

	j, err := json.Marshal(facts)
	if err != nil {
		return gjson.Result{}
	}

	return gjson.GetBytes(j, query)
}
