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

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestNewLoggerAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chartwriter", "v1.2.3", slog.LevelInfo)

	logger.Info("creating helm chart", "name", "app")
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "creating helm chart", rec["msg"])
	assert.Equal(t, "chartwriter", rec["module"])
	assert.Equal(t, "v1.2.3", rec["version"])
	assert.Equal(t, "app", rec["name"])
	assert.NotContains(t, rec, "source")
}

func TestNewLoggerDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chartwriter", "dev", slog.LevelDebug)

	logger.Debug("writing file", "path", "templates/deployment.yaml")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Contains(t, rec, "source")
}

func TestSetDefaultStructuredLoggerWithLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv(EnvLogLevel, "error")
	SetDefaultStructuredLoggerWithLevel("chartwriter", "dev", "")
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelWarn))

	SetDefaultStructuredLoggerWithLevel("chartwriter", "dev", "debug")
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
}

func TestNewLogLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(newLogger(&buf, "chartwriter", "dev", slog.LevelInfo))

	NewLogLogger(slog.LevelError, false).Print("http: TLS handshake error")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "http: TLS handshake error", rec["msg"])
	assert.Equal(t, "chartwriter", rec["module"])
}
