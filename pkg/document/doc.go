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

// Package document loads generated manifest files as YAML node trees and
// substitutes template expressions at addressed locations.
//
// Documents keep key order and comments because they are handled as
// yaml.Node trees rather than decoded maps. A path selects nodes inside
// every resource of a document:
//
//	spec.replicas
//	spec.template.spec.containers.(name == app).image
//	(kind == Service && metadata.name == web).spec.ports[0].port
//	metadata.annotations.'app.kubernetes.io/version'
//
// Dots separate keys, quotes protect keys containing dots, [n] indexes a
// sequence and (lhs == value && ...) filters sequence items or gates the
// current mapping. A key applied to a sequence is applied to each item.
//
// Replaced values are written as sentinel-wrapped, token-escaped scalars so
// the YAML encoder cannot quote or escape the template syntax in ways that
// survive into the output. Cleanup strips the sentinels after rendering and
// restores the original characters.
package document
