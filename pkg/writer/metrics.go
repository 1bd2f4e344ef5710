// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package writer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeDryRun  = "dry_run"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartwriter_runs_total",
			Help: "Total number of chart write runs by outcome",
		},
		[]string{"outcome"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chartwriter_run_duration_seconds",
			Help:    "Duration of chart write runs in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	artifactsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chartwriter_artifacts_written_total",
			Help: "Total number of chart files and directories written",
		},
	)

	valuesResolved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chartwriter_values_resolved",
			Help:    "Number of values published to values.yaml per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
