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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/chart-writer/pkg/serializer"
	"github.com/NVIDIA/chart-writer/pkg/version"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Flags: []cli.Flag{outputFormatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := version.Get()
			format := cmd.String("format")
			if format == "" {
				_, err := fmt.Fprintf(cmd.Root().Writer, "%s %s\n", name, info)
				return err
			}
			f, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			return serializer.NewWriter(f, cmd.Root().Writer).Serialize(ctx, info)
		},
	}
}
