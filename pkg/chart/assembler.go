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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/chart-writer/pkg/bundle"
	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/merge"
	"github.com/NVIDIA/chart-writer/pkg/values"
)

// Fixed chart file names.
const (
	ChartFile        = "Chart.yaml"
	ValuesFile       = "values.yaml"
	ValuesSchemaFile = "values.schema.json"
	ReadmeFile       = "README.md"
	NotesFile        = "NOTES.txt"
	ChartsDir        = "charts"
	TemplatesDir     = "templates"

	yamlIndent = 2
)

// ProfileValuesFile returns the values file name for a profile.
func ProfileValuesFile(profile string) string {
	return fmt.Sprintf("values.%s.yaml", profile)
}

// Assembler adds the chart metadata and companion files to a bundle.
type Assembler struct {
	cfg      *config.Config
	metadata *Metadata
	inputDir string
}

// NewAssembler returns an Assembler reading user files from inputDir.
func NewAssembler(cfg *config.Config, metadata *Metadata, inputDir string) *Assembler {
	return &Assembler{cfg: cfg, metadata: metadata, inputDir: inputDir}
}

// Assemble adds every non-template chart file to b.
func (a *Assembler) Assemble(ctx context.Context, b *bundle.Bundle, buckets *values.Buckets) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"chart", func() error { return a.addChart(b) }},
		{"values", func() error { return a.addValues(b, buckets) }},
		{"schema", func() error { return a.addSchema(b, buckets.Default) }},
		{"readme", func() error { return a.addReadme(b, buckets) }},
		{"charts", func() error { b.AddDir(ChartsDir); return nil }},
		{"notes", func() error { return a.addNotes(b) }},
		{"pass-through", func() error { return a.addPassThrough(b) }},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, "chart assembly cancelled", err)
		}
		if err := s.fn(); err != nil {
			return err
		}
		slog.Debug("chart step assembled", "step", s.name)
	}
	return nil
}

func (a *Assembler) addChart(b *bundle.Bundle) error {
	user, ok, err := a.readYAML(ChartFile)
	if err != nil {
		return err
	}

	var content string
	if ok {
		generated, err := toMap(a.metadata)
		if err != nil {
			return err
		}
		content, err = marshalYAML(merge.WithOverride(user, generated))
		if err != nil {
			return err
		}
	} else {
		content, err = marshalYAML(a.metadata)
		if err != nil {
			return err
		}
	}

	b.AddText(ChartFile, content)
	return nil
}

func (a *Assembler) addValues(b *bundle.Bundle, buckets *values.Buckets) error {
	user, _, err := a.readYAML(ValuesFile)
	if err != nil {
		return err
	}

	for _, profile := range buckets.Profiles() {
		content, err := marshalYAML(merge.WithOverride(user, buckets.Profile(profile).Tree()))
		if err != nil {
			return err
		}
		b.AddText(ProfileValuesFile(profile), content)
	}

	content, err := marshalYAML(merge.WithOverride(user, buckets.Default.Tree()))
	if err != nil {
		return err
	}
	b.AddText(ValuesFile, content)
	return nil
}

func (a *Assembler) addSchema(b *bundle.Bundle, defaults values.Bucket) error {
	if !a.cfg.CreateValuesSchemaFile {
		return a.copyIfExists(b, ValuesSchemaFile)
	}

	generated, err := toMap(BuildSchema(defaults))
	if err != nil {
		return err
	}

	var user map[string]any
	data, ok, err := a.readInput(ValuesSchemaFile)
	if err != nil {
		return err
	}
	if ok {
		if err := json.Unmarshal(data, &user); err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to parse %s", a.inputPath(ValuesSchemaFile)), err)
		}
	}

	out, err := json.MarshalIndent(merge.WithOverride(user, generated), "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode values schema", err)
	}
	b.AddText(ValuesSchemaFile, string(out)+"\n")
	return nil
}

func (a *Assembler) addReadme(b *bundle.Bundle, buckets *values.Buckets) error {
	if !a.cfg.CreateReadmeFile {
		return a.copyIfExists(b, ReadmeFile)
	}
	content, err := BuildReadme(a.metadata, buckets)
	if err != nil {
		return err
	}
	b.AddText(ReadmeFile, content)
	return nil
}

func (a *Assembler) addNotes(b *bundle.Bundle) error {
	data, ok, err := ResolveNotes(a.inputDir, a.cfg.Notes)
	if err != nil || !ok {
		return err
	}
	b.AddFile(TemplatesDir+"/"+NotesFile, data)
	return nil
}

func (a *Assembler) copyIfExists(b *bundle.Bundle, name string) error {
	data, ok, err := a.readInput(name)
	if err != nil || !ok {
		return err
	}
	b.AddFile(name, data)
	return nil
}

func (a *Assembler) inputPath(name string) string {
	return filepath.Join(a.inputDir, name)
}

// readInput returns the content of an optional input file.
func (a *Assembler) readInput(name string) ([]byte, bool, error) {
	if a.inputDir == "" {
		return nil, false, nil
	}
	path := a.inputPath(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("optional input not found", "file", path)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s", path), err)
	}
	return data, true, nil
}

func (a *Assembler) readYAML(name string) (map[string]any, bool, error) {
	data, ok, err := a.readInput(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to parse %s", a.inputPath(name)), err)
	}
	return m, true, nil
}

// toMap converts a typed value to the generic tree merge works on.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode document", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to decode document", err)
	}
	return m, nil
}

func marshalYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to encode yaml", err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to flush yaml", err)
	}
	return buf.String(), nil
}
