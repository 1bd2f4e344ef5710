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

package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/chart-writer/pkg/config"
	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/values"
)

const chartYAML = `name: app
version: 1.2.0
createReadmeFile: false
values:
  - property: replicas
    paths: [spec.replicas]
    description: Number of pods
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, NewLoader().Load(context.Background(), writeFile(t, "chart.yaml", chartYAML), cfg))

	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, "1.2.0", cfg.Version)
	assert.False(t, cfg.CreateReadmeFile)
	assert.True(t, cfg.CreateValuesSchemaFile, "default kept")
	assert.Equal(t, config.DefaultExtension, cfg.Extension, "default kept")
	require.Len(t, cfg.Values, 1)
	assert.Equal(t, []string{"spec.replicas"}, cfg.Values[0].Paths)
}

func TestLoadJSON(t *testing.T) {
	var contributions []values.Contribution
	src := writeFile(t, "decorators.json", `[{"source":"ports","references":[{"property":"port","paths":["spec.ports[0].port"]}]}]`)
	require.NoError(t, NewLoader().Load(context.Background(), src, &contributions))

	require.Len(t, contributions, 1)
	assert.Equal(t, "ports", contributions[0].Source)
	assert.Equal(t, "port", contributions[0].References[0].Property)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewConfig()

	err := NewLoader().Load(ctx, "", cfg)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))

	err = NewLoader().Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"), cfg)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIO))

	err = NewLoader().Load(ctx, writeFile(t, "bad.yaml", "name: app\nunknownField: 1\n"), cfg)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestLoadConfigMap(t *testing.T) {
	kube := fake.NewSimpleClientset(
		&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: "chart", Namespace: "apps"},
			Data:       map[string]string{"chart.yaml": chartYAML},
		},
		&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: "multi", Namespace: "apps"},
			Data: map[string]string{
				"a.yaml":    "name: a\n",
				"b.json":    `{"name":"b"}`,
				"notes.txt": "x",
			},
		},
	)
	loader := NewLoader(WithKubeClient(kube))
	ctx := context.Background()

	t.Run("single key", func(t *testing.T) {
		cfg := config.NewConfig()
		require.NoError(t, loader.Load(ctx, "cm://apps/chart", cfg))
		assert.Equal(t, "app", cfg.Name)
	})

	t.Run("named key", func(t *testing.T) {
		cfg := config.NewConfig()
		require.NoError(t, loader.Load(ctx, "cm://apps/multi/b.json", cfg))
		assert.Equal(t, "b", cfg.Name)
	})

	t.Run("ambiguous", func(t *testing.T) {
		err := loader.Load(ctx, "cm://apps/multi", config.NewConfig())
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
	})

	t.Run("missing key", func(t *testing.T) {
		err := loader.Load(ctx, "cm://apps/multi/c.yaml", config.NewConfig())
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})

	t.Run("missing configmap", func(t *testing.T) {
		err := loader.Load(ctx, "cm://apps/nope", config.NewConfig())
		assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	})
}

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		uri       string
		namespace string
		name      string
		key       string
		wantErr   bool
	}{
		{uri: "cm://apps/chart", namespace: "apps", name: "chart"},
		{uri: "cm://apps / chart ", namespace: "apps", name: "chart"},
		{uri: "cm://apps/chart/chart.yaml", namespace: "apps", name: "chart", key: "chart.yaml"},
		{uri: "apps/chart", wantErr: true},
		{uri: "cm://apps", wantErr: true},
		{uri: "cm://apps/", wantErr: true},
		{uri: "cm:///chart", wantErr: true},
		{uri: "cm://apps/chart/", wantErr: true},
		{uri: "cm://a/b/c/d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			ns, name, key, err := parseConfigMapURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.namespace, ns)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestWriter(t *testing.T) {
	data := map[string]any{"chart": "app", "files": 3}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf).Serialize(context.Background(), data))
	assert.JSONEq(t, `{"chart":"app","files":3}`, buf.String())

	buf.Reset()
	require.NoError(t, NewWriter(FormatYAML, &buf).Serialize(context.Background(), data))
	assert.YAMLEq(t, "chart: app\nfiles: 3\n", buf.String())

	buf.Reset()
	require.NoError(t, NewWriter("xml", &buf).Serialize(context.Background(), data))
	assert.YAMLEq(t, "chart: app\nfiles: 3\n", buf.String())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/B.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("chart.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("chart"))
	assert.True(t, Format("xml").IsUnknown())
	assert.Equal(t, []string{"json", "yaml"}, SupportedFormats())
}
