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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

func TestBundleEntries(t *testing.T) {
	b := New("/tmp/out/app")
	b.AddText("templates/deployment.yaml", "kind: Deployment\n")
	b.AddFile("LICENSE", []byte("MIT"))
	b.AddDir("charts")
	b.AddText("./templates/deployment.yaml", "kind: Deployment\nspec: {}\n")

	require.Len(t, b.Entries(), 3)
	entries := b.Entries()
	assert.Equal(t, "templates/deployment.yaml", entries[0].Path, "replacement keeps position")
	assert.Equal(t, "kind: Deployment\nspec: {}\n", string(entries[0].Data))
	assert.True(t, entries[0].Text)
	assert.False(t, entries[1].Text)
	assert.True(t, entries[2].Dir)

	e, ok := b.Get("LICENSE")
	require.True(t, ok)
	assert.Equal(t, "MIT", string(e.Data))
	_, ok = b.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, filepath.Join("/tmp/out/app", "templates", "deployment.yaml"), b.Abs("templates/deployment.yaml"))
}

func TestBundleWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "app")
	b := New(root)
	b.AddText("Chart.yaml", "name: app\n")
	b.AddText("templates/service.yaml", "kind: Service\n")
	b.AddFile("crds/crd.yaml", []byte("kind: CustomResourceDefinition\n"))
	b.AddDir("charts")

	artifacts, err := b.Write(context.Background())
	require.NoError(t, err)
	require.Len(t, artifacts, 4)

	chart := artifacts[filepath.Join(root, "Chart.yaml")]
	assert.True(t, chart.Text)
	assert.Equal(t, "name: app\n", chart.Content)
	assert.EqualValues(t, len("name: app\n"), chart.Size)

	crd := artifacts[filepath.Join(root, "crds", "crd.yaml")]
	assert.False(t, crd.Text)
	assert.Empty(t, crd.Content)

	charts := artifacts[filepath.Join(root, "charts")]
	assert.True(t, charts.Dir)

	info, err := os.Stat(filepath.Join(root, "charts"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(filepath.Join(root, "templates", "service.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kind: Service\n", string(data))

	assert.Equal(t, []string{
		filepath.Join(root, "Chart.yaml"),
		filepath.Join(root, "charts"),
		filepath.Join(root, "crds", "crd.yaml"),
		filepath.Join(root, "templates", "service.yaml"),
	}, artifacts.Paths())
}

func TestBundleWriteOverwrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "values.yaml"), []byte("old: true\nlonger: content\n"), 0o600))

	b := New(root)
	b.AddText("values.yaml", "new: true\n")
	_, err := b.Write(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "values.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "new: true\n", string(data))
}

func TestBundleWriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(t.TempDir())
	b.AddText("Chart.yaml", "name: app\n")
	_, err := b.Write(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
}

func TestBundleDiff(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "values.yaml"), []byte("replicas: 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Chart.yaml"), []byte("name: app\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "LICENSE"), []byte("old"), 0o600))

	b := New(root)
	b.AddText("Chart.yaml", "name: app\n")
	b.AddText("values.yaml", "replicas: 3\n")
	b.AddText("README.md", "# app\n")
	b.AddFile("LICENSE", []byte("new"))
	b.AddDir("charts")

	diff, err := b.Diff()
	require.NoError(t, err)

	assert.NotContains(t, diff, "Chart.yaml", "unchanged files are not reported")
	assert.Contains(t, diff, "--- a/values.yaml")
	assert.Contains(t, diff, "+++ b/values.yaml")
	assert.Contains(t, diff, "-replicas: 1")
	assert.Contains(t, diff, "+replicas: 3")
	assert.Contains(t, diff, "--- /dev/null")
	assert.Contains(t, diff, "+# app")
	assert.Contains(t, diff, "Binary file LICENSE differs")

	_, err = os.Stat(filepath.Join(root, "README.md"))
	assert.True(t, os.IsNotExist(err), "diff must not write")
}

func TestBundleDiffUpToDate(t *testing.T) {
	root := t.TempDir()
	b := New(root)
	b.AddText("Chart.yaml", "name: app\n")
	_, err := b.Write(context.Background())
	require.NoError(t, err)

	diff, err := b.Diff()
	require.NoError(t, err)
	assert.Empty(t, diff)
}
