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

// Package cli implements the chartwriter command line.
//
// Commands:
//
//	chartwriter generate --config chart.yaml --manifests target/kubernetes [--input helm] [--output target]
//	chartwriter serve [--port 8080] [--output-root /var/lib/chartwriter]
//	chartwriter version
//
// generate loads the chart configuration (a file or cm://namespace/name),
// optional decorator contributions, and writes the Helm chart. With
// --archive the chart is packaged, and with --push the archive is published
// to an OCI registry. --dry-run prints a diff instead of writing. serve runs
// the same pipeline behind an HTTP API.
//
// Process settings come from the environment:
//
//	CHARTWRITER_HELM_BIN      helm executable used for dependency builds
//	CHARTWRITER_PLAIN_HTTP    push over plain HTTP
//	CHARTWRITER_INSECURE_TLS  skip registry TLS verification
//	LOG_LEVEL                 debug, info, warn or error
package cli
