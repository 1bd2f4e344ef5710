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

package merge

import (
	"fmt"
)

// Merge returns a new map holding base with overlay merged over it.
// Neither argument is modified. Nested maps are copied so the result
// shares no mutable state with its inputs.
func Merge(base, overlay map[string]any) map[string]any {
	out := Copy(base)
	if out == nil {
		out = make(map[string]any, len(overlay))
	}
	for k, ov := range overlay {
		om, overlayIsMap := asMap(ov)
		bm, baseIsMap := asMap(out[k])
		if overlayIsMap && baseIsMap {
			out[k] = Merge(bm, om)
			continue
		}
		out[k] = copyValue(ov)
	}
	return out
}

// WithOverride layers generated over user in two passes: the user tree is
// laid over the generated one to pick up every structural section it
// defines, then the generated tree is laid back on top so generated leaf
// values win.
func WithOverride(user, generated map[string]any) map[string]any {
	if len(user) == 0 {
		return Copy(generated)
	}
	return Merge(Merge(generated, user), generated)
}

// Copy returns a deep copy of m. Sequences and nested maps are copied,
// scalars are shared.
func Copy(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	if m, ok := asMap(v); ok {
		return Copy(m)
	}
	if s, ok := v.([]any); ok {
		cp := make([]any, len(s))
		for i := range s {
			cp[i] = copyValue(s[i])
		}
		return cp
	}
	return v
}

// asMap normalizes the map shapes produced by the YAML and JSON decoders.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
