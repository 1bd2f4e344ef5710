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

// Package packager turns a written chart directory into a distributable
// archive.
//
// Packaging runs after the chart is on disk:
//
//  1. When the chart declares dependencies, a DependencyBuilder resolves them
//     into charts/. HelmCLI runs "helm dependency build" in the chart
//     directory; a non-zero exit fails packaging with the tool output.
//  2. Every chart file is written to an archive named
//     <name>-<version>[-<classifier>].<extension>, each entry prefixed with
//     the chart name.
//  3. Optionally a checksums.txt with SHA-256 sums is written next to the
//     archive.
//
// Supported extensions are tar.gz, tgz, tar, tar.xz, txz and zip.
//
// Usage:
//
//	p := packager.New(packager.HelmCLI{})
//	res, err := p.Package(ctx, &packager.Request{
//	    Name:      "app",
//	    Version:   "1.0.0",
//	    Extension: "tar.gz",
//	    ChartDir:  "/out/helm/app",
//	    OutputDir: "/out/helm",
//	    Files:     artifacts.Paths(),
//	})
package packager
