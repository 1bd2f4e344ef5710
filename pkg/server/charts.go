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

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NVIDIA/chart-writer/pkg/chart"
	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/serializer"
	"github.com/NVIDIA/chart-writer/pkg/values"
	"github.com/NVIDIA/chart-writer/pkg/writer"
)

const (
	manifestsDir = "manifests"
	inputDir     = "input"
	outputDir    = "output"
)

// ChartRequest is the body of POST /v1/charts.
type ChartRequest struct {
	// Config is the chart configuration, decoded over the defaults.
	Config json.RawMessage `json:"config"`

	// Manifests maps manifest file names to their YAML content.
	Manifests map[string]string `json:"manifests"`

	// Files maps user chart files, relative to the input folder, to content.
	Files map[string]string `json:"files,omitempty"`

	Decorators     []values.Contribution `json:"decorators,omitempty"`
	ProjectVersion string                `json:"projectVersion,omitempty"`
	DryRun         bool                  `json:"dryRun,omitempty"`
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{"method": r.Method})
		return
	}

	var req ChartRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"Invalid request body", false, map[string]any{"error": err.Error()})
		return
	}

	cfg := config.NewConfig()
	if len(req.Config) == 0 || string(req.Config) == "null" {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "config is required", false, nil)
		return
	}
	if err := serializer.Decode(serializer.FormatJSON, req.Config, cfg); err != nil {
		writePipelineError(w, r, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to decode chart configuration", err))
		return
	}
	if !s.checkConfig(w, r, cfg) {
		return
	}
	if len(req.Manifests) == 0 {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "at least one manifest is required", false, nil)
		return
	}

	workDir := filepath.Join(s.config.OutputRoot, requestIDFrom(r.Context()))
	if err := stage(filepath.Join(workDir, manifestsDir), req.Manifests); err != nil {
		writePipelineError(w, r, err)
		return
	}
	if err := stage(filepath.Join(workDir, inputDir), req.Files); err != nil {
		writePipelineError(w, r, err)
		return
	}

	opts := append([]writer.Option{}, s.writerOpts...)
	opts = append(opts, writer.WithDryRun(req.DryRun))

	res, err := writer.New(opts...).Write(r.Context(), &writer.Input{
		Config:         cfg,
		ProjectVersion: req.ProjectVersion,
		Manifests:      []string{filepath.Join(workDir, manifestsDir)},
		InputDir:       filepath.Join(workDir, inputDir),
		OutputDir:      filepath.Join(workDir, outputDir),
		Decorators:     req.Decorators,
	})
	if err != nil {
		slog.Error("chart request failed", "requestID", requestIDFrom(r.Context()), "error", err)
		writePipelineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// checkConfig rejects settings that reach outside the request's work
// directory, and features the operator has not enabled. It writes the error
// response and returns false when the request must stop.
func (s *Server) checkConfig(w http.ResponseWriter, r *http.Request, cfg *config.Config) bool {
	if cfg.Name != "" && (!filepath.IsLocal(cfg.Name) || strings.ContainsAny(cfg.Name, `/\`)) {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"chart name must be a single path element", false, map[string]any{"name": cfg.Name})
		return false
	}
	if cfg.OutputFolder != "" && !filepath.IsLocal(cfg.OutputFolder) {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"outputFolder must be a relative path inside the output directory", false,
			map[string]any{"outputFolder": cfg.OutputFolder})
		return false
	}
	if cfg.Notes != "" && !chart.IsBundledResource(cfg.Notes) && !filepath.IsLocal(cfg.Notes) {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest,
			"notes must name a bundled resource or a file in the request files", false,
			map[string]any{"notes": cfg.Notes})
		return false
	}
	if cfg.Push != nil && cfg.Push.Reference != "" && !s.config.AllowPush {
		writeError(w, r, http.StatusForbidden, ErrCodeForbidden,
			"pushing charts is disabled on this server", false, nil)
		return false
	}
	if cfg.CreateTarFile && len(cfg.Dependencies) > 0 && !s.config.AllowDependencies {
		writeError(w, r, http.StatusForbidden, ErrCodeForbidden,
			"fetching chart dependencies is disabled on this server", false, nil)
		return false
	}
	return true
}

// stage writes files below dir. Names must be local paths.
func stage(dir string, files map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create %s", dir), err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !filepath.IsLocal(name) {
			return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("file name %q must be a relative path inside the chart", name))
		}
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create %s", filepath.Dir(p)), err)
		}
		if err := os.WriteFile(p, []byte(files[name]), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to write %s", p), err)
		}
	}
	return nil
}
