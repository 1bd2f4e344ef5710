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

package packager

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
)

type fakeBuilder struct {
	calls []string
	err   error
}

func (f *fakeBuilder) Build(_ context.Context, chartDir string) error {
	f.calls = append(f.calls, chartDir)
	return f.err
}

// chartTree writes a small chart below out/helm/app and returns the chart
// dir and its top-level artifact paths.
func chartTree(t *testing.T) (string, []string) {
	t.Helper()
	chartDir := filepath.Join(t.TempDir(), "helm", "app")
	files := map[string]string{
		"Chart.yaml":                "name: app\n",
		"values.yaml":               "replicas: 3\n",
		"templates/deployment.yaml": "kind: Deployment\n",
		"charts/dep/Chart.yaml":     "name: dep\n",
	}
	for name, content := range files {
		p := filepath.Join(chartDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return chartDir, []string{
		filepath.Join(chartDir, "Chart.yaml"),
		filepath.Join(chartDir, "values.yaml"),
		filepath.Join(chartDir, "templates", "deployment.yaml"),
		filepath.Join(chartDir, "charts"),
	}
}

var wantEntries = []string{
	"app/Chart.yaml",
	"app/charts/dep/Chart.yaml",
	"app/templates/deployment.yaml",
	"app/values.yaml",
}

func tarNames(t *testing.T, r io.Reader) []string {
	t.Helper()
	var names []string
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "app-1.0.0.tar.gz", ArchiveName("app", "1.0.0", "", "tar.gz"))
	assert.Equal(t, "app-1.0.0-helm.tgz", ArchiveName("app", "1.0.0", "helm", ".tgz"))
}

func TestCreateArchive(t *testing.T) {
	tests := []struct {
		ext  string
		read func(t *testing.T, path string) []string
	}{
		{"tar.gz", func(t *testing.T, p string) []string {
			f, err := os.Open(p)
			require.NoError(t, err)
			defer f.Close()
			gr, err := gzip.NewReader(f)
			require.NoError(t, err)
			return tarNames(t, gr)
		}},
		{"tar", func(t *testing.T, p string) []string {
			f, err := os.Open(p)
			require.NoError(t, err)
			defer f.Close()
			return tarNames(t, f)
		}},
		{"tar.xz", func(t *testing.T, p string) []string {
			f, err := os.Open(p)
			require.NoError(t, err)
			defer f.Close()
			xr, err := xz.NewReader(f)
			require.NoError(t, err)
			return tarNames(t, xr)
		}},
		{"zip", func(t *testing.T, p string) []string {
			zr, err := zip.OpenReader(p)
			require.NoError(t, err)
			defer zr.Close()
			var names []string
			for _, f := range zr.File {
				names = append(names, f.Name)
			}
			return names
		}},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			chartDir, files := chartTree(t)
			target := filepath.Join(filepath.Dir(chartDir), ArchiveName("app", "1.0.0", "", tt.ext))
			require.NoError(t, CreateArchive(context.Background(), target, chartDir, "app", files))
			assert.Equal(t, wantEntries, tt.read(t, target))
		})
	}
}

func TestCreateArchiveUnsupported(t *testing.T) {
	chartDir, files := chartTree(t)
	err := CreateArchive(context.Background(), filepath.Join(t.TempDir(), "app.rar"), chartDir, "app", files)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestCreateArchiveMissingFileLeavesNothing(t *testing.T) {
	chartDir, files := chartTree(t)
	files = append(files, filepath.Join(chartDir, "missing.yaml"))
	target := filepath.Join(t.TempDir(), "app-1.0.0.tar.gz")

	err := CreateArchive(context.Background(), target, chartDir, "app", files)
	require.Error(t, err)
	assert.NoFileExists(t, target)
}

func TestWriteChecksums(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app-1.0.0.tgz")
	require.NoError(t, os.WriteFile(file, []byte("content"), 0644))

	path, err := WriteChecksums(context.Background(), dir, []string{file})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ChecksumFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// sha256("content")
	assert.Equal(t, "ed7002b439e9ac845f22357d822bac1444730fbdb6016d3ec9432297b9ec9f73  app-1.0.0.tgz\n", string(data))
}

func TestPackage(t *testing.T) {
	chartDir, files := chartTree(t)
	outDir := filepath.Dir(chartDir)
	builder := &fakeBuilder{}

	res, err := New(builder).Package(context.Background(), &Request{
		Name:         "app",
		Version:      "1.0.0",
		Extension:    "tar.gz",
		ChartDir:     chartDir,
		OutputDir:    outDir,
		Files:        files,
		Dependencies: []config.Dependency{{Name: "dep", Version: "1.0.0", Repository: "https://example.com"}},
		Checksums:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{chartDir}, builder.calls)
	assert.Equal(t, filepath.Join(outDir, "app-1.0.0.tar.gz"), res.Archive)
	assert.FileExists(t, res.Archive)
	assert.FileExists(t, res.Checksums)
	assert.Equal(t, "sha256", res.Digest.Algorithm().String())
}

func TestPackageSkipsFetchWithoutDependencies(t *testing.T) {
	chartDir, files := chartTree(t)
	builder := &fakeBuilder{err: errors.New(errors.ErrCodeExternalTool, "should not run")}

	_, err := New(builder).Package(context.Background(), &Request{
		Name: "app", Version: "1.0.0", Extension: "tgz",
		ChartDir: chartDir, OutputDir: filepath.Dir(chartDir), Files: files,
	})
	require.NoError(t, err)
	assert.Empty(t, builder.calls)
}

func TestPackageFetchFailureCreatesNoArchive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the helm binary")
	}

	bin := filepath.Join(t.TempDir(), "helm")
	script := "#!/bin/sh\necho 'Error: no repository definition for https://charts.example.com'\nexit 1\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))

	chartDir, files := chartTree(t)
	outDir := filepath.Dir(chartDir)

	_, err := New(HelmCLI{Bin: bin}).Package(context.Background(), &Request{
		Name:         "app",
		Version:      "1.0.0",
		Extension:    "tar.gz",
		ChartDir:     chartDir,
		OutputDir:    outDir,
		Files:        files,
		Dependencies: []config.Dependency{{Name: "dep", Version: "1.0.0", Repository: "https://charts.example.com"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalTool))
	assert.True(t, strings.Contains(err.Error(), "no repository definition"))
	assert.NoFileExists(t, filepath.Join(outDir, "app-1.0.0.tar.gz"))
}

func TestHelmCLIMissingBinary(t *testing.T) {
	err := HelmCLI{Bin: filepath.Join(t.TempDir(), "nope")}.Build(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalTool))
}
