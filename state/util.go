// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"github.com/choria-io/openstack-nfs/metrics"
	"github.com/choria-io/openstack-nfs/model"
)

func updateMetrics(e *model.StepEvent) {
	step := string(e.Step)

	metrics.StepRunTime.WithLabelValues(step, e.Consumer).Observe(e.Duration.Seconds())
	metrics.ProvisionPhase.Set(float64(e.Phase))

	switch {
	case e.Failed:
		metrics.StepFailed.WithLabelValues(step, e.Consumer, e.Status.String()).Inc()
	case e.Skipped:
		metrics.StepSkipped.WithLabelValues(step, e.Consumer).Inc()
	case e.Changed:
		metrics.StepChanged.WithLabelValues(step, e.Consumer).Inc()
	}
}
