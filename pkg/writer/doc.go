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

// Package writer turns generated Kubernetes manifests and a chart
// configuration into a Helm chart.
//
// A run resolves the value bindings, substitutes placeholders into the
// manifests, renders one template per resource kind, assembles Chart.yaml,
// values files, schema, README, notes and pass-through files, writes the
// chart below <output>/<outputFolder>/<name> and optionally packages and
// pushes it.
//
// Any error aborts the run. Files written before the failure stay on disk;
// no archive is produced.
//
// Usage:
//
//	w := writer.New()
//	res, err := w.Write(ctx, &writer.Input{
//	    Config:         cfg,
//	    ProjectVersion: "1.0.0",
//	    Manifests:      []string{"target/kubernetes"},
//	    OutputDir:      "target",
//	})
//
// Write records Prometheus metrics for run outcome, duration and artifact
// counts on the default registry.
package writer
