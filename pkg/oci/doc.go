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

// Package oci publishes packaged Helm charts to OCI registries.
//
// A push target is a registry namespace such as oci://ghcr.io/org/charts.
// The chart is stored at <namespace>/<chart name> and tagged with the chart
// version, the layout "helm push" produces:
//
//   - config blob: Chart.yaml metadata as JSON
//     (application/vnd.cncf.helm.config.v1+json)
//   - one layer: the gzipped chart archive
//     (application/vnd.cncf.helm.chart.content.v1.tar+gzip)
//
// Usage:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/org/charts")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.PushChart(ctx, ref, oci.Chart{
//	    Name:    "app",
//	    Version: "1.0.0",
//	    Archive: "/out/helm/app-1.0.0.tar.gz",
//	    Config:  chartJSON,
//	}, oci.PushOptions{})
//
// # Authentication
//
// Credentials are read from the Docker configuration (~/.docker/config.json)
// through the ORAS credentials package.
package oci
