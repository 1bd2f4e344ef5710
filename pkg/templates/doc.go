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

// Package templates turns processed manifest resources into Helm template
// files.
//
// Resources are grouped by kind and written to templates/<kind>.yaml.
// User-authored files in the input templates folder contribute in two ways:
// files whose name starts with an underscore are helpers copied verbatim,
// while any other file named after a kind contributes only its
// {{- define ... }} blocks, prepended to the generated file. Resources
// matched by a Guard are wrapped in {{- if .Values.<property> }}.
package templates
