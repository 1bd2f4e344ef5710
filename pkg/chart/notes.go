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
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// ResolveNotes returns the NOTES.txt content. A NOTES.txt in inputDir takes
// precedence; otherwise resource is looked up among the bundled resources
// and then on disk, relative to inputDir when not absolute. An empty
// resource means no notes. A named resource that cannot be found is an error.
func ResolveNotes(inputDir, resource string) ([]byte, bool, error) {
	if inputDir != "" {
		override := filepath.Join(inputDir, NotesFile)
		data, err := os.ReadFile(override)
		if err == nil {
			return data, true, nil
		}
		if !os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s", override), err)
		}
	}

	resource = strings.TrimSpace(resource)
	if resource == "" {
		return nil, false, nil
	}

	if data, err := fs.ReadFile(resources, bundledPath(resource)); err == nil {
		slog.Debug("using bundled notes", "resource", resource)
		return data, true, nil
	}

	candidate := resource
	if !filepath.IsAbs(candidate) && inputDir != "" {
		candidate = filepath.Join(inputDir, candidate)
	}
	if data, err := os.ReadFile(candidate); err == nil {
		return data, true, nil
	}

	return nil, false, errors.NewWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("could not find the notes template file at %s", resource),
		map[string]any{"resource": resource, "inputDir": inputDir})
}

// IsBundledResource reports whether name refers to a file shipped inside the
// binary, such as the default NOTES template.
func IsBundledResource(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	info, err := fs.Stat(resources, bundledPath(name))
	return err == nil && !info.IsDir()
}

func bundledPath(name string) string {
	return path.Join(resourcesDir, strings.TrimPrefix(filepath.ToSlash(name), "/"))
}
