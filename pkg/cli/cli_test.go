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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/serializer"
)

const testManifest = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: app
spec:
  replicas: 3
`

const testConfig = `name: app
version: 1.2.3
values:
- property: replicas
  paths:
  - spec.replicas
`

func writeInputs(t *testing.T) (cfgPath, manifestPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "chart.yaml")
	manifestPath = filepath.Join(dir, "kubernetes.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0644))
	require.NoError(t, os.WriteFile(manifestPath, []byte(testManifest), 0644))
	return cfgPath, manifestPath, t.TempDir()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.Writer = &buf
	cmd.ErrWriter = &buf
	err := cmd.Run(context.Background(), append([]string{name}, args...))
	return buf.String(), err
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    serializer.Format
		wantErr bool
	}{
		{in: "json", want: serializer.FormatJSON},
		{in: "YAML", want: serializer.FormatYAML},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOutputFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate(t *testing.T) {
	cfgPath, manifestPath, outDir := writeInputs(t)

	out, err := run(t, "generate", "--config", cfgPath, "--manifests", manifestPath, "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "helm chart app 1.2.3 written")

	chartDir := filepath.Join(outDir, config.DefaultOutputFolder, "app")
	deployment, err := os.ReadFile(filepath.Join(chartDir, "templates", "deployment.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(deployment), "replicas: {{ .Values.replicas }}")

	vals, err := os.ReadFile(filepath.Join(chartDir, "values.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(vals), "replicas: 3")
}

func TestGenerateJSON(t *testing.T) {
	cfgPath, manifestPath, outDir := writeInputs(t)

	out, err := run(t, "generate", "-c", cfgPath, "-m", manifestPath, "-o", outDir, "--format", "json")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, filepath.Join(outDir, config.DefaultOutputFolder, "app"), res["chartDir"])
	assert.NotEmpty(t, res["runId"])
}

func TestGenerateDryRun(t *testing.T) {
	cfgPath, manifestPath, outDir := writeInputs(t)

	out, err := run(t, "generate", "-c", cfgPath, "-m", manifestPath, "-o", outDir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")

	_, err = os.Stat(filepath.Join(outDir, config.DefaultOutputFolder, "app"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateDecorators(t *testing.T) {
	cfgPath, manifestPath, outDir := writeInputs(t)
	decorators := filepath.Join(t.TempDir(), "decorators.yaml")
	require.NoError(t, os.WriteFile(decorators, []byte(`- source: scaling
  references:
  - property: logLevel
    value: debug
`), 0644))

	_, err := run(t, "generate", "-c", cfgPath, "-m", manifestPath, "-o", outDir, "--decorators", decorators)
	require.NoError(t, err)

	vals, err := os.ReadFile(filepath.Join(outDir, config.DefaultOutputFolder, "app", "values.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(vals), "replicas: 3")
	assert.Contains(t, string(vals), "logLevel: debug")
}

func TestGenerateErrors(t *testing.T) {
	cfgPath, manifestPath, outDir := writeInputs(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing manifests", args: []string{"generate", "-c", cfgPath, "-o", outDir}},
		{name: "missing config file", args: []string{"generate", "-c", filepath.Join(outDir, "nope.yaml"), "-m", manifestPath}},
		{name: "bad format", args: []string{"generate", "-c", cfgPath, "-m", manifestPath, "-f", "xml"}},
		{name: "push with dry run", args: []string{"generate", "-c", cfgPath, "-m", manifestPath, "--push", "oci://localhost/charts", "--dry-run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.NewConfig()
	applyOverrides(cfg, &generateCmdOptions{push: "oci://localhost:5000/charts", classifier: "linux"}, &settings{PlainHTTP: true})

	assert.True(t, cfg.CreateTarFile)
	assert.Equal(t, "linux", cfg.TarFileClassifier)
	require.NotNil(t, cfg.Push)
	assert.Equal(t, "oci://localhost:5000/charts", cfg.Push.Reference)
	assert.True(t, cfg.Push.PlainHTTP)
	assert.False(t, cfg.Push.InsecureTLS)
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("CHARTWRITER_HELM_BIN", "/opt/helm")
	t.Setenv("CHARTWRITER_INSECURE_TLS", "true")

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, "/opt/helm", s.HelmBin)
	assert.True(t, s.InsecureTLS)
	assert.False(t, s.PlainHTTP)

	t.Setenv("CHARTWRITER_PLAIN_HTTP", "maybe")
	_, err = loadSettings()
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, name+" ")

	out, err = run(t, "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}

func TestGenerateDefaultChartVersion(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "chart.yaml")
	manifestPath := filepath.Join(dir, "kubernetes.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("name: app\n"), 0644))
	require.NoError(t, os.WriteFile(manifestPath, []byte(testManifest), 0644))
	outDir := t.TempDir()

	_, err := run(t, "generate", "-c", cfgPath, "-m", manifestPath, "-o", outDir, "--input", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, config.DefaultOutputFolder, "app", "Chart.yaml"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, yaml.Unmarshal(data, &meta))
	assert.Equal(t, "0.1.0", meta["version"], "the chartwriter build version must not leak into the chart")

	outDir = t.TempDir()
	_, err = run(t, "generate", "-c", cfgPath, "-m", manifestPath, "-o", outDir, "--input", t.TempDir(), "--project-version", "v2.4.0")
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(outDir, config.DefaultOutputFolder, "app", "Chart.yaml"))
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &meta))
	assert.Equal(t, "2.4.0", meta["version"])
}
