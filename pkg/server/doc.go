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

// Package server exposes the chart writer as an HTTP service.
//
// Routes:
//
//	POST /v1/charts  generate a chart from inline manifests and configuration
//	GET  /health     liveness check
//	GET  /ready      readiness check, 503 until the listener is up
//	GET  /metrics    Prometheus metrics
//
// The chart request carries the chart configuration, the manifest documents
// keyed by file name and, optionally, user chart files keyed by their path
// relative to the input folder:
//
//	{
//	  "config": {"name": "app", "values": [{"property": "replicas", "paths": ["spec.replicas"]}]},
//	  "manifests": {"kubernetes.yml": "apiVersion: apps/v1\nkind: Deployment\n..."},
//	  "files": {"templates/_helpers.tpl": "..."},
//	  "dryRun": true
//	}
//
// Charts are written below the configured output root, one directory per
// request id. Chart names, output folders and notes resources must stay
// inside that directory. Pushing to a registry and fetching dependencies use
// the server's credentials and network, so both are off unless the operator
// enables them (CHARTWRITER_ALLOW_PUSH, CHARTWRITER_ALLOW_DEPENDENCIES).
// Under systemd the server reports READY and STOPPING through NOTIFY_SOCKET. Every API request passes through request id, panic recovery,
// rate limiting, logging and metrics middleware.
package server
