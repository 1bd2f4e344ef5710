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

package bundle

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

const diffContext = 3

// Diff returns a unified diff from the files currently on disk to the
// bundle's text entries. Copied files are reported by name only when they
// differ. An empty string means the chart on disk is up to date.
func (b *Bundle) Diff() (string, error) {
	var out strings.Builder

	for _, e := range b.entries {
		if e.Dir {
			continue
		}

		target := b.Abs(e.Path)
		current, err := os.ReadFile(target)
		if err != nil && !os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s", target), err)
		}
		if bytes.Equal(current, e.Data) && err == nil {
			continue
		}

		if !e.Text {
			fmt.Fprintf(&out, "Binary file %s differs\n", e.Path)
			continue
		}

		from := "a/" + e.Path
		if os.IsNotExist(err) {
			from = "/dev/null"
		}

		text, derr := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(current)),
			B:        difflib.SplitLines(string(e.Data)),
			FromFile: from,
			ToFile:   "b/" + e.Path,
			Context:  diffContext,
		})
		if derr != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to diff %s", e.Path), derr)
		}
		out.WriteString(text)
	}
	return out.String(), nil
}
