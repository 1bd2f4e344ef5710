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
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/chart-writer/pkg/bundle"
	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/values"
)

func testBuckets() *values.Buckets {
	buckets := values.NewBuckets()
	minReplicas := float64(1)
	buckets.Put("", "replicas", &values.Holder{
		Value:     3,
		Reference: values.ConfigReference{Property: "replicas", Description: "Number of pods", Minimum: &minReplicas, Required: true},
	})
	buckets.Put("", "image.tag", &values.Holder{
		Value:     "1.0",
		Reference: values.ConfigReference{Property: "image.tag", Description: "Image tag"},
	})
	buckets.Put("prod", "replicas", &values.Holder{
		Value:     5,
		Reference: values.ConfigReference{Property: "replicas", Profile: "prod"},
	})
	buckets.Partition()
	return buckets
}

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func assemble(t *testing.T, cfg *config.Config, inputDir string) *bundle.Bundle {
	t.Helper()
	b := bundle.New(t.TempDir())
	a := NewAssembler(cfg, Build(cfg, "1.2.3"), inputDir)
	require.NoError(t, a.Assemble(context.Background(), b, testBuckets()))
	return b
}

func entry(t *testing.T, b *bundle.Bundle, p string) string {
	t.Helper()
	e, ok := b.Get(p)
	require.True(t, ok, "missing %s", p)
	return string(e.Data)
}

func TestBuildMetadata(t *testing.T) {
	cfg := config.NewConfig(config.WithName("app"), config.WithDependencies(config.Dependency{
		Name: "redis", Version: "17.0.0", Repository: "https://charts.example.com",
	}))
	cfg.Annotations = []config.Annotation{{Key: "category", Value: "demo"}}

	m := Build(cfg, "v1.2.3")
	assert.Equal(t, "v2", m.APIVersion)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, map[string]string{"category": "demo"}, m.Annotations)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "redis", m.Dependencies[0].Alias)
	assert.True(t, m.Dependencies[0].Enabled)
}

func TestNormalizeVersion(t *testing.T) {
	tests := map[string]string{
		"":        "0.1.0",
		"v1.0.0":  "1.0.0",
		"1.0.0":   "1.0.0",
		"vNext":   "vNext",
		" 2.0.0 ": "2.0.0",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeVersion(in), in)
	}
}

func TestAssembleGeneratesChart(t *testing.T) {
	cfg := config.NewConfig(config.WithName("app"))
	b := assemble(t, cfg, "")

	var chart map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(entry(t, b, ChartFile)), &chart))
	assert.Equal(t, "app", chart["name"])
	assert.Equal(t, "1.2.3", chart["version"])

	var vals map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(entry(t, b, ValuesFile)), &vals))
	assert.Equal(t, 3, vals["replicas"])
	assert.Equal(t, map[string]any{"tag": "1.0"}, vals["image"])

	var prod map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(entry(t, b, ProfileValuesFile("prod"))), &prod))
	assert.Equal(t, 5, prod["replicas"])
	assert.Equal(t, map[string]any{"tag": "1.0"}, prod["image"], "profiles inherit defaults")

	e, ok := b.Get(ChartsDir)
	require.True(t, ok)
	assert.True(t, e.Dir)

	assert.Contains(t, entry(t, b, "templates/NOTES.txt"), ".Release.Name")
	assert.Contains(t, entry(t, b, ReadmeFile), "# App")
}

func TestAssembleUserFilesMerged(t *testing.T) {
	in := t.TempDir()
	writeInput(t, in, ChartFile, "name: other\nversion: 9.9.9\nicon: https://example.com/icon.png\n")
	writeInput(t, in, ValuesFile, "replicas: 1\nextra:\n  enabled: true\n")

	cfg := config.NewConfig(config.WithName("app"))
	b := assemble(t, cfg, in)

	var chart map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(entry(t, b, ChartFile)), &chart))
	assert.Equal(t, "app", chart["name"], "generated wins")
	assert.Equal(t, "1.2.3", chart["version"])
	assert.Equal(t, "https://example.com/icon.png", chart["icon"], "user keys kept")

	var vals map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(entry(t, b, ValuesFile)), &vals))
	assert.Equal(t, 3, vals["replicas"])
	assert.Equal(t, map[string]any{"enabled": true}, vals["extra"])
}

func TestAssembleIsIdempotent(t *testing.T) {
	in := t.TempDir()
	cfg := config.NewConfig(config.WithName("app"))

	first := assemble(t, cfg, in)
	writeInput(t, in, ChartFile, entry(t, first, ChartFile))
	writeInput(t, in, ValuesFile, entry(t, first, ValuesFile))

	second := assemble(t, cfg, in)
	assert.Equal(t, entry(t, first, ChartFile), entry(t, second, ChartFile))
	assert.Equal(t, entry(t, first, ValuesFile), entry(t, second, ValuesFile))
}

func TestAssembleSchema(t *testing.T) {
	cfg := config.NewConfig(config.WithName("app"))
	b := assemble(t, cfg, "")

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(entry(t, b, ValuesSchemaFile)), &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"replicas"}, schema["required"])

	props := schema["properties"].(map[string]any)
	replicas := props["replicas"].(map[string]any)
	assert.Equal(t, "integer", replicas["type"])
	assert.Equal(t, "Number of pods", replicas["description"])
	assert.InDelta(t, 1.0, replicas["minimum"], 0)

	image := props["image"].(map[string]any)
	assert.Equal(t, "object", image["type"])
	tag := image["properties"].(map[string]any)["tag"].(map[string]any)
	assert.Equal(t, "string", tag["type"])
}

func TestAssembleDisabledFilesCopied(t *testing.T) {
	in := t.TempDir()
	writeInput(t, in, ReadmeFile, "# Hand written\n")

	cfg := config.NewConfig(config.WithName("app"), config.WithReadme(false), config.WithValuesSchema(false))
	b := assemble(t, cfg, in)

	assert.Equal(t, "# Hand written\n", entry(t, b, ReadmeFile))
	_, ok := b.Get(ValuesSchemaFile)
	assert.False(t, ok)
}

func TestBuildReadme(t *testing.T) {
	cfg := config.NewConfig(config.WithName("my-app"), config.WithDescription("Demo | app"))
	out, err := BuildReadme(Build(cfg, "1.0.0"), testBuckets())
	require.NoError(t, err)

	assert.Contains(t, out, "# My App")
	assert.Contains(t, out, "| `replicas` | Number of pods | `3` |")
	assert.Contains(t, out, "| `image.tag` | Image tag | `\"1.0\"` |")
	assert.Contains(t, out, "values.prod.yaml")
}

func TestResolveNotes(t *testing.T) {
	t.Run("input override", func(t *testing.T) {
		in := t.TempDir()
		writeInput(t, in, NotesFile, "custom")
		data, ok, err := ResolveNotes(in, config.DefaultNotesResource)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "custom", string(data))
	})

	t.Run("bundled resource", func(t *testing.T) {
		data, ok, err := ResolveNotes(t.TempDir(), "/"+config.DefaultNotesResource)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, string(data), ".Chart.Name")
	})

	t.Run("file on disk", func(t *testing.T) {
		in := t.TempDir()
		writeInput(t, in, "docs/notes.txt", "from disk")
		data, ok, err := ResolveNotes(in, "docs/notes.txt")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "from disk", string(data))
	})

	t.Run("disabled", func(t *testing.T) {
		_, ok, err := ResolveNotes(t.TempDir(), "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		_, _, err := ResolveNotes(t.TempDir(), "nope.txt")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})
}

func TestAssembleMissingNotesFails(t *testing.T) {
	cfg := config.NewConfig(config.WithName("app"), config.WithNotes("missing.txt"))
	b := bundle.New(t.TempDir())
	err := NewAssembler(cfg, Build(cfg, ""), t.TempDir()).Assemble(context.Background(), b, testBuckets())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestAssemblePassThrough(t *testing.T) {
	in := t.TempDir()
	writeInput(t, in, "LICENSE", "Apache-2.0")
	writeInput(t, in, "questions.yaml", "questions: []")
	writeInput(t, in, "crds/widget.yaml", "kind: CustomResourceDefinition")
	writeInput(t, in, "other.txt", "ignored")

	cfg := config.NewConfig(config.WithName("app"))
	b := assemble(t, cfg, in)

	assert.Equal(t, "Apache-2.0", entry(t, b, "LICENSE"))
	assert.Equal(t, "questions: []", entry(t, b, "questions.yaml"))
	assert.Equal(t, "kind: CustomResourceDefinition", entry(t, b, "crds/widget.yaml"))
	_, ok := b.Get("other.txt")
	assert.False(t, ok)
}

func TestAssembleCancelled(t *testing.T) {
	cfg := config.NewConfig(config.WithName("app"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewAssembler(cfg, Build(cfg, ""), "").Assemble(ctx, bundle.New(t.TempDir()), testBuckets())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestIsBundledResource(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{config.DefaultNotesResource, true},
		{"/" + config.DefaultNotesResource, true},
		{"README.md.tmpl", true},
		{"", false},
		{".", false},
		{"missing.txt", false},
		{"/etc/passwd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBundledResource(tt.name))
		})
	}
}
