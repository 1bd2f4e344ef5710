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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/chart-writer/pkg/bundle"
	"github.com/NVIDIA/chart-writer/pkg/chart"
	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/document"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/oci"
	"github.com/NVIDIA/chart-writer/pkg/packager"
	"github.com/NVIDIA/chart-writer/pkg/templates"
	"github.com/NVIDIA/chart-writer/pkg/values"
)

// Pusher publishes a packaged chart.
type Pusher interface {
	Push(ctx context.Context, ref *oci.Reference, chart oci.Chart, opts oci.PushOptions) (*oci.PushResult, error)
}

// PusherFunc adapts a function to Pusher.
type PusherFunc func(ctx context.Context, ref *oci.Reference, chart oci.Chart, opts oci.PushOptions) (*oci.PushResult, error)

// Push calls f.
func (f PusherFunc) Push(ctx context.Context, ref *oci.Reference, chart oci.Chart, opts oci.PushOptions) (*oci.PushResult, error) {
	return f(ctx, ref, chart, opts)
}

// Input is everything one run consumes.
type Input struct {
	Config *config.Config

	// ProjectVersion is the chart version when the config sets none.
	ProjectVersion string

	// Manifests are manifest files or directories holding them.
	Manifests []string

	// InputDir holds the user's chart files. Defaults to Config.InputFolder.
	InputDir string

	// OutputDir is the root below which <outputFolder>/<name> is written.
	OutputDir string

	// Decorators are value bindings contributed by manifest decorators, in
	// application order.
	Decorators []values.Contribution
}

// Result describes a completed run.
type Result struct {
	RunID     string           `json:"runId" yaml:"runId"`
	ChartDir  string           `json:"chartDir" yaml:"chartDir"`
	Artifacts bundle.Artifacts `json:"-" yaml:"-"`
	Files     []string         `json:"files" yaml:"files"`
	Archive   string           `json:"archive,omitempty" yaml:"archive,omitempty"`
	Checksums string           `json:"checksums,omitempty" yaml:"checksums,omitempty"`
	Pushed    *oci.PushResult  `json:"pushed,omitempty" yaml:"pushed,omitempty"`
	Profiles  []string         `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	DryRun    bool             `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Diff      string           `json:"diff,omitempty" yaml:"diff,omitempty"`
	Metadata  *chart.Metadata  `json:"metadata" yaml:"metadata"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
}

// Writer runs the chart pipeline.
type Writer struct {
	builder packager.DependencyBuilder
	pusher  Pusher
	dryRun  bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithDependencyBuilder sets how chart dependencies are fetched before
// packaging. Defaults to the helm CLI.
func WithDependencyBuilder(b packager.DependencyBuilder) Option {
	return func(w *Writer) {
		w.builder = b
	}
}

// WithPusher sets how packaged charts are published.
func WithPusher(p Pusher) Option {
	return func(w *Writer) {
		w.pusher = p
	}
}

// WithDryRun builds the chart in memory and reports a diff against the
// output directory instead of writing.
func WithDryRun(dryRun bool) Option {
	return func(w *Writer) {
		w.dryRun = dryRun
	}
}

// New returns a Writer.
func New(opts ...Option) *Writer {
	w := &Writer{
		builder: packager.HelmCLI{},
		pusher:  PusherFunc(oci.PushChart),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write runs the pipeline for in.
func (w *Writer) Write(ctx context.Context, in *Input) (*Result, error) {
	start := time.Now()
	outcome := outcomeError
	defer func() {
		runsTotal.WithLabelValues(outcome).Inc()
		runDuration.Observe(time.Since(start).Seconds())
	}()

	if in == nil || in.Config == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "input with a chart configuration is required")
	}
	cfg := in.Config

	runID := uuid.NewString()
	log := slog.With("run_id", runID, "chart", cfg.Name)

	refs, pushRef, err := prepare(cfg, in.Decorators)
	if err != nil {
		return nil, err
	}

	log.Info("creating helm chart", "manifests", in.Manifests, "references", len(refs))

	resources, buckets, err := substitute(in.Manifests, cfg, refs)
	if err != nil {
		return nil, err
	}
	valuesResolved.Observe(float64(len(buckets.Default)))

	chartDir := filepath.Join(in.OutputDir, cfg.OutputFolder, cfg.Name)
	inputDir := in.InputDir
	if inputDir == "" {
		inputDir = cfg.InputFolder
	}

	metadata := chart.Build(cfg, in.ProjectVersion)
	b := bundle.New(chartDir)
	if err := addTemplates(b, cfg, inputDir, resources); err != nil {
		return nil, err
	}
	if err := chart.NewAssembler(cfg, metadata, inputDir).Assemble(ctx, b, buckets); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    runID,
		ChartDir: chartDir,
		Profiles: buckets.Profiles(),
		Metadata: metadata,
	}

	if w.dryRun {
		res.DryRun = true
		res.Diff, err = b.Diff()
		if err != nil {
			return nil, err
		}
		for _, e := range b.Entries() {
			res.Files = append(res.Files, b.Abs(e.Path))
		}
		res.Duration = time.Since(start)
		outcome = outcomeDryRun
		log.Info("dry run complete", "files", len(res.Files))
		return res, nil
	}

	res.Artifacts, err = b.Write(ctx)
	if err != nil {
		return nil, err
	}
	res.Files = res.Artifacts.Paths()
	artifactsWritten.Add(float64(len(res.Artifacts)))

	if cfg.CreateTarFile {
		if err := w.pack(ctx, cfg, metadata, res, pushRef); err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	outcome = outcomeSuccess
	log.Info("helm chart created",
		"dir", chartDir,
		"files", len(res.Files),
		"duration", res.Duration,
	)
	return res, nil
}

// prepare validates the configuration and resolves the value bindings
// before anything is written.
func prepare(cfg *config.Config, decorators []values.Contribution) ([]values.ConfigReference, *oci.Reference, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	refs := values.Resolve(cfg.Values, cfg.Flags(), decorators, cfg.ValuesRootAlias)
	if err := values.Validate(refs); err != nil {
		return nil, nil, err
	}

	var pushRef *oci.Reference
	if cfg.Push != nil && cfg.Push.Reference != "" {
		ref, err := oci.ParseReference(cfg.Push.Reference)
		if err != nil {
			return nil, nil, err
		}
		pushRef = ref
	}
	return refs, pushRef, nil
}

// substitute loads the manifests, replaces bound paths with placeholders
// and collects the values.
func substitute(manifests []string, cfg *config.Config, refs []values.ConfigReference) ([]*document.Resource, *values.Buckets, error) {
	files, err := manifestFiles(manifests)
	if err != nil {
		return nil, nil, err
	}

	buckets := values.NewBuckets()
	var resources []*document.Resource
	for _, f := range files {
		doc, err := document.Load(f)
		if err != nil {
			return nil, nil, err
		}
		if err := values.Apply(doc, refs, buckets); err != nil {
			return nil, nil, err
		}
		resources = append(resources, doc.Resources...)
	}

	for _, r := range resources {
		for _, e := range cfg.Expressions {
			if _, err := r.ReadAndReplace(e.Path, e.Expression); err != nil {
				return nil, nil, err
			}
		}
	}

	values.ApplyLiterals(refs, buckets)
	buckets.Partition()
	return resources, buckets, nil
}

// manifestFiles expands directories into the manifest files they hold,
// sorted by name.
func manifestFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read manifests at %s", p), err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to list %s", p), err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && document.IsManifest(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

func addTemplates(b *bundle.Bundle, cfg *config.Config, inputDir string, resources []*document.Resource) error {
	user, err := templates.LoadUserTemplates(filepath.Join(inputDir, templates.Dir))
	if err != nil {
		return err
	}

	guards := make([]templates.Guard, 0, len(cfg.AddIfStatements))
	for _, s := range cfg.AddIfStatements {
		guards = append(guards, templates.Guard{
			Property: values.NormalizeProperty(s.Property, cfg.ValuesRootAlias),
			Kind:     s.OnResourceKind,
			Name:     s.OnResourceName,
		})
	}

	files, err := templates.NewMaterializer(guards...).Materialize(resources, user)
	if err != nil {
		return err
	}
	for _, f := range files {
		b.AddText(path.Join(templates.Dir, f.Name), f.Content)
	}
	for _, h := range user.Helpers {
		b.AddFile(path.Join(templates.Dir, h.Name), h.Data)
	}
	return nil
}

func (w *Writer) pack(ctx context.Context, cfg *config.Config, metadata *chart.Metadata, res *Result, pushRef *oci.Reference) error {
	pkg, err := packager.New(w.builder).Package(ctx, &packager.Request{
		Name:         cfg.Name,
		Version:      metadata.Version,
		Classifier:   cfg.TarFileClassifier,
		Extension:    cfg.Extension,
		ChartDir:     res.ChartDir,
		OutputDir:    filepath.Dir(res.ChartDir),
		Files:        res.Files,
		Dependencies: cfg.Dependencies,
		Checksums:    cfg.CreateChecksums,
	})
	if err != nil {
		return err
	}
	res.Archive = pkg.Archive
	res.Checksums = pkg.Checksums

	if pushRef == nil {
		return nil
	}
	if w.pusher == nil {
		return errors.New(errors.ErrCodeInternal, "no chart pusher configured")
	}

	chartConfig, err := json.Marshal(metadata)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode chart metadata", err)
	}
	res.Pushed, err = w.pusher.Push(ctx, pushRef, oci.Chart{
		Name:    cfg.Name,
		Version: metadata.Version,
		Archive: pkg.Archive,
		Config:  chartConfig,
	}, oci.PushOptions{PlainHTTP: cfg.Push.PlainHTTP, InsecureTLS: cfg.Push.InsecureTLS})
	return err
}
