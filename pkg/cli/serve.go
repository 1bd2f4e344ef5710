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

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/chart-writer/pkg/packager"
	"github.com/NVIDIA/chart-writer/pkg/server"
	"github.com/NVIDIA/chart-writer/pkg/writer"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the chart writer as an HTTP service",
		Description: `Serves POST /v1/charts, /health, /ready and /metrics.

Defaults are read from the environment (PORT, ADDRESS, RATE_LIMIT,
RATE_LIMIT_BURST, SHUTDOWN_TIMEOUT, CHARTWRITER_OUTPUT_ROOT,
CHARTWRITER_ALLOW_PUSH, CHARTWRITER_ALLOW_DEPENDENCIES); flags win.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port",
			},
			&cli.StringFlag{
				Name:  "output-root",
				Usage: "Directory charts are written below, one folder per request",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Chart requests per second",
			},
			&cli.BoolFlag{
				Name:  "allow-push",
				Usage: "Let chart requests push to OCI registries with this host's credentials",
			},
			&cli.BoolFlag{
				Name:  "allow-dependencies",
				Usage: "Let chart requests fetch Helm dependencies",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := server.NewConfig()
			if err != nil {
				return err
			}
			if cmd.IsSet("address") {
				cfg.Address = cmd.String("address")
			}
			if cmd.IsSet("port") {
				cfg.Port = int(cmd.Int("port"))
			}
			if cmd.IsSet("output-root") {
				cfg.OutputRoot = cmd.String("output-root")
			}
			if cmd.IsSet("rate-limit") {
				cfg.RateLimit = rate.Limit(cmd.Float("rate-limit"))
			}
			if cmd.IsSet("allow-push") {
				cfg.AllowPush = cmd.Bool("allow-push")
			}
			if cmd.IsSet("allow-dependencies") {
				cfg.AllowDependencies = cmd.Bool("allow-dependencies")
			}

			env, err := loadSettings()
			if err != nil {
				return err
			}
			s := server.New(cfg, server.WithWriterOptions(
				writer.WithDependencyBuilder(packager.HelmCLI{Bin: env.HelmBin}),
			))
			return s.Run(ctx)
		},
	}
}
