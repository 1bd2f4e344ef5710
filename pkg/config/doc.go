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

// Package config defines the declarative chart configuration.
//
// A Config is usually loaded from YAML or JSON (see pkg/serializer) over the
// defaults returned by NewConfig, so omitted fields keep their defaults:
//
//	name: app
//	version: 1.0.0
//	values:
//	  - property: replicas
//	    paths: [spec.replicas]
//	addIfStatements:
//	  - property: app.enabled
//	    onResourceKind: Deployment
//
// Programmatic callers use NewConfig with options instead.
package config
