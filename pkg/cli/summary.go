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
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/NVIDIA/chart-writer/pkg/writer"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	bold   = color.New(color.Bold)
)

// printSummary writes a human readable account of a run.
func printSummary(w io.Writer, res *writer.Result) error {
	if res.DryRun {
		if res.Diff == "" {
			_, err := green.Fprintf(w, "✓ chart %s is up to date\n", res.ChartDir)
			return err
		}
		if _, err := yellow.Fprintf(w, "⚠ dry run: %d files would change in %s\n", len(res.Files), res.ChartDir); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, res.Diff)
		return err
	}

	if _, err := green.Fprintf(w, "✓ helm chart %s %s written to %s\n", res.Metadata.Name, res.Metadata.Version, res.ChartDir); err != nil {
		return err
	}
	for _, f := range res.Files {
		rel, err := filepath.Rel(res.ChartDir, f)
		if err != nil {
			rel = f
		}
		fmt.Fprintf(w, "  %s\n", rel)
	}
	if len(res.Profiles) > 0 {
		bold.Fprintf(w, "profiles: ")
		fmt.Fprintf(w, "%v\n", res.Profiles)
	}
	if res.Archive != "" {
		bold.Fprintf(w, "archive: ")
		fmt.Fprintf(w, "%s\n", res.Archive)
	}
	if res.Pushed != nil {
		bold.Fprintf(w, "pushed: ")
		fmt.Fprintf(w, "%s@%s\n", res.Pushed.Reference, res.Pushed.Digest)
	}
	return nil
}
