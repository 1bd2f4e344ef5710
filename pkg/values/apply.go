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

package values

import (
	"fmt"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// Replacer finds the value at a document path and replaces it with an
// expression, returning the value previously held there (nil if the path
// matched nothing).
type Replacer interface {
	ReadAndReplace(path, expression string) (any, error)
}

// Apply processes refs against one document in list order and records the
// resolved values into buckets. The seen set is scoped to this call, so each
// document resolves its properties independently.
func Apply(doc Replacer, refs []ConfigReference, buckets *Buckets) error {
	seen := make(map[string]any)

	for _, ref := range refs {
		if prev, ok := seen[ref.Property]; ok {
			if ref.Profile != "" {
				value := ref.Literal()
				if value == nil {
					value = prev
				}
				buckets.Put(ref.Profile, ref.Property, &Holder{Value: value, Reference: ref})
			}
			continue
		}

		expression := ref.PlaceholderExpression()
		for _, path := range ref.Paths {
			found, err := doc.ReadAndReplace(path, expression)
			if err != nil {
				return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
					fmt.Sprintf("failed to apply value mapping for %s", ref.Property), err,
					map[string]any{"property": ref.Property, "path": path})
			}

			value := ref.Literal()
			if value == nil {
				value = found
			}
			if value != nil {
				seen[ref.Property] = value
				buckets.Put(ref.Profile, ref.Property, &Holder{Value: value, Reference: ref})
			}
		}
	}
	return nil
}

// ApplyLiterals records bindings without paths. It runs after every document
// has been processed, so a literal overrides a value found at a path for
// the same property and profile.
func ApplyLiterals(refs []ConfigReference, buckets *Buckets) {
	for _, ref := range refs {
		if ref.HasPaths() {
			continue
		}
		if value := ref.Literal(); value != nil {
			buckets.Put(ref.Profile, ref.Property, &Holder{Value: value, Reference: ref})
		}
	}
}
