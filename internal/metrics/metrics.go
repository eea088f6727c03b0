// Copyright 2025 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes provisioning instrumentation on the default
// Prometheus registry, served by the CLI's metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testenv_vm_operations_total",
		Help: "Node lifecycle operations by name and outcome.",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "testenv_vm_operation_duration_seconds",
		Help: "Node lifecycle operation latency.",
		// Provisioning runs from sub-second lookups to multi-minute boots.
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 14),
	}, []string{"operation"})
)

// ObserveOperation records one lifecycle operation with its duration.
func ObserveOperation(operation string, start time.Time, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}

	operationsTotal.WithLabelValues(operation, outcome).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
