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

package packager

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// Request describes one chart to package.
type Request struct {
	// Name is the chart name, used as the archive entry prefix.
	Name       string
	Version    string
	Classifier string
	Extension  string

	// ChartDir is the written chart directory.
	ChartDir string

	// OutputDir receives the archive and checksums.
	OutputDir string

	// Files are the chart artifacts to archive. Directories are expanded.
	Files []string

	Dependencies []config.Dependency
	Checksums    bool
}

// Result describes a packaged chart.
type Result struct {
	Archive   string
	Digest    digest.Digest
	Checksums string
	Duration  time.Duration
}

// Packager fetches dependencies and archives charts.
type Packager struct {
	builder DependencyBuilder
}

// New returns a Packager resolving dependencies with builder.
func New(builder DependencyBuilder) *Packager {
	return &Packager{builder: builder}
}

// Package fetches the chart dependencies and creates the archive. Nothing is
// archived when the dependency fetch fails.
func (p *Packager) Package(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "package request is required")
	}
	start := time.Now()

	if err := FetchDependencies(ctx, p.builder, req.ChartDir, req.Dependencies); err != nil {
		return nil, err
	}

	target := filepath.Join(req.OutputDir, ArchiveName(req.Name, req.Version, req.Classifier, req.Extension))
	if err := CreateArchive(ctx, target, req.ChartDir, req.Name, req.Files); err != nil {
		return nil, err
	}

	d, err := FileDigest(target)
	if err != nil {
		return nil, err
	}
	res := &Result{Archive: target, Digest: d}

	if req.Checksums {
		res.Checksums, err = WriteChecksums(ctx, req.OutputDir, []string{target})
		if err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	slog.Info("helm chart packaged",
		"archive", target,
		"digest", d.String(),
		"duration", res.Duration,
	)
	return res, nil
}
