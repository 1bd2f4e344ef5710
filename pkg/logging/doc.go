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

// Package logging configures structured logging for the chart writer.
//
// All output goes to stderr as JSON through log/slog. Every record carries
// the module name and version; debug level adds source locations.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: per-file writes and skipped optional inputs, with source location
//   - INFO: pipeline stages (default)
//   - WARN/WARNING: suspicious but usable configuration
//   - ERROR: failures
//
// # Usage
//
//	logging.SetDefaultStructuredLoggerWithLevel("chartwriter", version, "")
//	slog.Info("creating helm chart", "name", name)
//
// An explicit level overrides the environment:
//
//	logging.SetDefaultStructuredLoggerWithLevel("chartwriter", version, "debug")
//
// Libraries that only accept a *log.Logger, such as http.Server.ErrorLog,
// get one backed by the default handler:
//
//	srv.ErrorLog = logging.NewLogLogger(slog.LevelError, false)
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is given:
//
//	LOG_LEVEL=debug chartwriter generate --config chart.yaml
package logging
