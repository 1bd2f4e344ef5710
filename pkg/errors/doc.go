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

// Package errors provides the structured error type used across the chart
// writer. Each error carries a code that classifies the failure so callers
// (and the CLI exit path) can tell configuration mistakes from I/O problems
// and external tool failures.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeExternalTool,
//	    "error fetching Helm dependencies",
//	    cause,
//	    map[string]any{
//	        "dir":    chartDir,
//	        "output": string(out),
//	    },
//	)
package errors
