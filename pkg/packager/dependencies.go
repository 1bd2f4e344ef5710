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
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// DefaultHelmBin is the helm executable looked up on PATH.
const DefaultHelmBin = "helm"

// DependencyBuilder resolves the dependencies declared in a chart directory.
type DependencyBuilder interface {
	Build(ctx context.Context, chartDir string) error
}

// HelmCLI builds dependencies with the helm command line.
type HelmCLI struct {
	// Bin is the helm executable. Defaults to DefaultHelmBin.
	Bin string
}

// Build runs "helm dependency build" in chartDir.
func (h HelmCLI) Build(ctx context.Context, chartDir string) error {
	bin := h.Bin
	if bin == "" {
		bin = DefaultHelmBin
	}

	cmd := exec.CommandContext(ctx, bin, "dependency", "build")
	cmd.Dir = chartDir

	out, err := cmd.CombinedOutput()
	if err != nil {
		cause := strings.TrimSpace(string(out))
		if cause == "" {
			cause = err.Error()
		}
		return errors.WrapWithContext(errors.ErrCodeExternalTool,
			fmt.Sprintf("error fetching Helm dependencies. Cause: %s", cause), err,
			map[string]any{"bin": bin, "dir": chartDir})
	}

	slog.Debug("helm dependency build output", "output", string(out))
	return nil
}

// FetchDependencies runs builder when deps is not empty.
func FetchDependencies(ctx context.Context, builder DependencyBuilder, chartDir string, deps []config.Dependency) error {
	if len(deps) == 0 {
		return nil
	}
	if builder == nil {
		return errors.New(errors.ErrCodeInternal, "no dependency builder configured")
	}

	slog.Info("fetching helm dependencies", "dir", chartDir, "count", len(deps))
	if err := builder.Build(ctx, chartDir); err != nil {
		return err
	}
	slog.Info("dependencies successfully fetched", "dir", chartDir)
	return nil
}
