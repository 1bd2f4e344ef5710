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

// Package serializer loads chart configuration and decorator contributions
// and writes command results.
//
// Sources are local JSON or YAML files or Kubernetes ConfigMaps addressed
// as cm://namespace/name[/key]. Values are decoded over whatever the target
// already holds, so callers pass a defaulted struct:
//
//	cfg := config.NewConfig()
//	if err := serializer.NewLoader().Load(ctx, "chart.yaml", cfg); err != nil {
//	    return err
//	}
//
// Results are written as JSON or YAML:
//
//	w := serializer.NewWriter(serializer.FormatYAML, os.Stdout)
//	err := w.Serialize(ctx, result)
package serializer
