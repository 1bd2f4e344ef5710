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

package chart

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/NVIDIA/chart-writer/pkg/bundle"
	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// passThrough lists the input files copied into the chart as they are,
// matched case-insensitively.
var passThrough = sets.New(
	"license",
	"app-readme.md",
	"questions.yml",
	"questions.yaml",
	"requirements.yml",
	"requirements.yaml",
	"crds",
)

// IsPassThrough reports whether an input file name is copied verbatim.
func IsPassThrough(name string) bool {
	return passThrough.Has(strings.ToLower(name))
}

func (a *Assembler) addPassThrough(b *bundle.Bundle) error {
	if a.inputDir == "" {
		return nil
	}

	entries, err := os.ReadDir(a.inputDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to list %s", a.inputDir), err)
	}

	for _, e := range entries {
		if !IsPassThrough(e.Name()) {
			continue
		}
		if err := copyTree(b, a.inputDir, e.Name()); err != nil {
			return err
		}
	}
	return nil
}

// copyTree adds the file or directory at root/name to b, recursively.
func copyTree(b *bundle.Bundle, root, name string) error {
	return filepath.WalkDir(filepath.Join(root, name), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to copy %s", p), err)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to resolve %s", p), err)
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			b.AddDir(rel)
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to copy %s", p), err)
		}
		b.AddFile(rel, data)
		return nil
	})
}
