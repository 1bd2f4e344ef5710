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

package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/chart-writer/pkg/document"
	"github.com/NVIDIA/chart-writer/pkg/errors"
)

const (
	// Dir is the templates folder name, both in the input and in the chart.
	Dir = "templates"

	// HelperPrefix marks helper files copied verbatim.
	HelperPrefix = "_"

	DefineStartTag = "{{- define"
	EndTag         = "{{- end }}"

	ifStatementStartTag = "{{- if .Values.%s }}"
	fileExtension       = ".yaml"
	resourceSeparator   = "---\n"
)

// Guard wraps matching resources in a conditional on Property. Empty Kind
// or Name filters match every resource.
type Guard struct {
	Property string
	Kind     string
	Name     string
}

// Matches reports whether the guard targets a resource.
func (g Guard) Matches(kind, name string) bool {
	if g.Kind != "" && !strings.EqualFold(g.Kind, kind) {
		return false
	}
	return g.Name == "" || g.Name == name
}

// Open returns the conditional opening line.
func (g Guard) Open() string {
	return fmt.Sprintf(ifStatementStartTag, g.Property)
}

// Helper is a user helper file copied into the chart.
type Helper struct {
	Name string
	Data []byte
}

// UserTemplates holds what the input templates folder contributes.
type UserTemplates struct {
	Helpers []Helper

	// Functions maps a template file name to its define blocks.
	Functions map[string]string
}

// File is a generated template file.
type File struct {
	Name    string
	Kind    string
	Content string
}

// FileName returns the template file name for a resource kind.
func FileName(kind string) string {
	return strings.ToLower(kind) + fileExtension
}

// LoadUserTemplates reads dir. A missing directory yields empty templates.
func LoadUserTemplates(dir string) (*UserTemplates, error) {
	ut := &UserTemplates{Functions: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		slog.Debug("no user templates found", "dir", dir)
		return ut, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to list %s", dir), err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s", path), err)
		}

		if strings.HasPrefix(e.Name(), HelperPrefix) {
			ut.Helpers = append(ut.Helpers, Helper{Name: e.Name(), Data: data})
			continue
		}
		if fns := ExtractFunctions(string(data)); fns != "" {
			ut.Functions[e.Name()] = fns
		}
	}
	return ut, nil
}

// ExtractFunctions returns the lines from each define start marker through
// its end marker.
func ExtractFunctions(content string) string {
	var b strings.Builder
	inside := false
	for _, line := range strings.Split(content, "\n") {
		if inside || strings.Contains(line, DefineStartTag) {
			inside = !strings.Contains(line, EndTag)
			b.WriteString(strings.TrimSuffix(line, "\r"))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Materializer renders resources into template files.
type Materializer struct {
	guards []Guard
}

// NewMaterializer returns a Materializer applying guards.
func NewMaterializer(guards ...Guard) *Materializer {
	return &Materializer{guards: guards}
}

// Materialize returns one file per resource kind, in order of first
// appearance. Resources of the same kind share a file, separated by
// document markers.
func (m *Materializer) Materialize(resources []*document.Resource, user *UserTemplates) ([]File, error) {
	var kinds []string
	byKind := make(map[string][]*document.Resource)
	for _, r := range resources {
		kind := r.Kind()
		if kind == "" {
			slog.Warn("skipping resource without kind", "name", r.Name())
			continue
		}
		name := FileName(kind)
		if _, ok := byKind[name]; !ok {
			kinds = append(kinds, kind)
		}
		byKind[name] = append(byKind[name], r)
	}

	files := make([]File, 0, len(kinds))
	for _, kind := range kinds {
		name := FileName(kind)

		var b strings.Builder
		if user != nil {
			if fns := user.Functions[name]; fns != "" {
				b.WriteString(fns)
				b.WriteString("\n")
			}
		}

		for i, r := range byKind[name] {
			chunk, err := r.Marshal()
			if err != nil {
				return nil, errors.WrapWithContext(errors.ErrCodeInternal,
					fmt.Sprintf("failed to render %s", name), err,
					map[string]any{"kind": kind, "name": r.Name()})
			}
			chunk = m.guard(r.Kind(), r.Name(), chunk)
			if i > 0 {
				b.WriteString(resourceSeparator)
			}
			b.WriteString(chunk)
		}

		files = append(files, File{Name: name, Kind: kind, Content: document.Cleanup(b.String())})
	}
	return files, nil
}

func (m *Materializer) guard(kind, name, body string) string {
	for _, g := range m.guards {
		if !g.Matches(kind, name) {
			continue
		}
		body = g.Open() + "\n" + strings.TrimRight(body, "\n") + "\n" + EndTag + "\n"
	}
	return body
}
