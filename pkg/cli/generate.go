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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/packager"
	"github.com/NVIDIA/chart-writer/pkg/serializer"
	"github.com/NVIDIA/chart-writer/pkg/values"
	"github.com/NVIDIA/chart-writer/pkg/writer"
)

// generateCmdOptions holds parsed options for the generate command.
type generateCmdOptions struct {
	configPath     string
	manifests      []string
	inputDir       string
	outputDir      string
	decorators     string
	projectVersion string
	kubeconfig     string
	push           string
	extension      string
	classifier     string
	format         string
	archive        bool
	dryRun         bool
}

func parseGenerateCmdOptions(cmd *cli.Command) (*generateCmdOptions, error) {
	opts := &generateCmdOptions{
		configPath:     cmd.String("config"),
		manifests:      cmd.StringSlice("manifests"),
		inputDir:       cmd.String("input"),
		outputDir:      cmd.String("output"),
		decorators:     cmd.String("decorators"),
		projectVersion: cmd.String("project-version"),
		kubeconfig:     cmd.String("kubeconfig"),
		push:           cmd.String("push"),
		extension:      cmd.String("extension"),
		classifier:     cmd.String("classifier"),
		format:         cmd.String("format"),
		archive:        cmd.Bool("archive"),
		dryRun:         cmd.Bool("dry-run"),
	}

	if len(opts.manifests) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "--manifests is required")
	}
	if opts.format != "" {
		if _, err := parseOutputFormat(opts.format); err != nil {
			return nil, err
		}
	}
	if opts.push != "" && opts.dryRun {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "--push cannot be combined with --dry-run")
	}
	return opts, nil
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a Helm chart from Kubernetes manifests",
		Description: `Reads the generated Kubernetes manifests, replaces the configured paths
with Helm value placeholders and writes a chart to <output>/<outputFolder>/<name>:

  Chart.yaml, values.yaml, values.<profile>.yaml, values.schema.json,
  README.md, templates/<kind>.yaml, templates/NOTES.txt, charts/

User files in the input folder (Chart.yaml, values.yaml, templates/,
LICENSE, crds/, ...) are merged or copied into the chart.

Examples:

  chartwriter generate --config chart.yaml --manifests target/kubernetes

Package and push:
  chartwriter generate --config chart.yaml --manifests target/kubernetes \
    --archive --push oci://ghcr.io/org/charts

Preview changes:
  chartwriter generate --config cm://apps/chart --manifests k8s.yml --dry-run`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Required: true,
				Usage:    "Chart configuration file (YAML or JSON) or ConfigMap URI (cm://namespace/name[/key])",
			},
			&cli.StringSliceFlag{
				Name:    "manifests",
				Aliases: []string{"m"},
				Usage:   "Manifest file or directory of manifests (can be repeated)",
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Folder with user chart files (default: the config inputFolder)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Directory below which <outputFolder>/<name> is written",
			},
			&cli.StringFlag{
				Name:  "decorators",
				Usage: "File or ConfigMap URI with value bindings contributed by decorators",
			},
			&cli.StringFlag{
				Name:  "project-version",
				Usage: "Build version of the project, used as chart version when the config sets none (default: 0.1.0)",
			},
			&cli.BoolFlag{
				Name:  "archive",
				Usage: "Package the chart into an archive",
			},
			&cli.StringFlag{
				Name:  "extension",
				Usage: fmt.Sprintf("Archive extension (%s)", strings.Join(config.SupportedExtensions, ", ")),
			},
			&cli.StringFlag{
				Name:  "classifier",
				Usage: "Archive file name classifier",
			},
			&cli.StringFlag{
				Name:  "push",
				Usage: "Push the packaged chart to an OCI registry namespace (oci://host/namespace); implies --archive",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print a diff of the chart against the output directory without writing",
			},
			outputFormatFlag(),
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseGenerateCmdOptions(cmd)
			if err != nil {
				return err
			}
			return runGenerate(ctx, cmd, opts)
		},
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command, opts *generateCmdOptions) error {
	env, err := loadSettings()
	if err != nil {
		return err
	}

	loader := serializer.NewLoader(serializer.WithKubeconfig(opts.kubeconfig))

	cfg := config.NewConfig()
	if err := loader.Load(ctx, opts.configPath, cfg); err != nil {
		slog.Error("failed to load chart configuration", "error", err, "path", opts.configPath)
		return err
	}
	applyOverrides(cfg, opts, env)

	var decorators []values.Contribution
	if opts.decorators != "" {
		if err := loader.Load(ctx, opts.decorators, &decorators); err != nil {
			slog.Error("failed to load decorators", "error", err, "path", opts.decorators)
			return err
		}
	}

	w := writer.New(
		writer.WithDependencyBuilder(packager.HelmCLI{Bin: env.HelmBin}),
		writer.WithDryRun(opts.dryRun),
	)
	res, err := w.Write(ctx, &writer.Input{
		Config:         cfg,
		ProjectVersion: opts.projectVersion,
		Manifests:      opts.manifests,
		InputDir:       opts.inputDir,
		OutputDir:      opts.outputDir,
		Decorators:     decorators,
	})
	if err != nil {
		slog.Error("chart generation failed", "error", err)
		return err
	}

	out := cmd.Root().Writer
	if opts.format != "" {
		f, _ := parseOutputFormat(opts.format)
		return serializer.NewWriter(f, out).Serialize(ctx, res)
	}
	return printSummary(out, res)
}

// applyOverrides applies command line switches over the loaded config.
func applyOverrides(cfg *config.Config, opts *generateCmdOptions, env *settings) {
	if opts.archive || opts.push != "" {
		cfg.CreateTarFile = true
	}
	if opts.extension != "" {
		cfg.Extension = opts.extension
	}
	if opts.classifier != "" {
		cfg.TarFileClassifier = opts.classifier
	}
	if opts.push != "" {
		cfg.Push = &config.Push{Reference: opts.push}
	}
	if cfg.Push != nil {
		cfg.Push.PlainHTTP = cfg.Push.PlainHTTP || env.PlainHTTP
		cfg.Push.InsecureTLS = cfg.Push.InsecureTLS || env.InsecureTLS
	}
}

func outputFormatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("Print the result as structured data (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func parseOutputFormat(format string) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(format))
	if !slices.Contains(serializer.SupportedFormats(), string(f)) {
		return "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid --format %q (must be one of %s)", format, strings.Join(serializer.SupportedFormats(), ", ")))
	}
	return f, nil
}
