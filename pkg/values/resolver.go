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
	"slices"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// Resolve merges the three binding origins into one ordered list. Every
// returned binding carries a normalized property. Decorator contributions
// are flattened in application order and then reversed so the most
// recently applied decorator is considered first.
func Resolve(user []ConfigReference, flags []Flag, decorators []Contribution, rootAlias string) []ConfigReference {
	refs := make([]ConfigReference, 0, len(user)+len(flags))

	for _, r := range user {
		refs = append(refs, normalized(r, rootAlias))
	}

	for _, f := range flags {
		refs = append(refs, ConfigReference{
			Property:    NormalizeProperty(f.Property, rootAlias),
			Description: f.Description,
			Value:       f.Default,
		})
	}

	var fromDecorators []ConfigReference
	for _, c := range decorators {
		for _, r := range c.References {
			fromDecorators = append(fromDecorators, normalized(r, rootAlias))
		}
	}
	slices.Reverse(fromDecorators)

	return append(refs, fromDecorators...)
}

func normalized(r ConfigReference, rootAlias string) ConfigReference {
	r.Property = NormalizeProperty(r.Property, rootAlias)
	r.Paths = slices.Clone(r.Paths)
	return r
}

// Validate rejects bindings that can never produce a value: those without
// a property, and those with neither a path nor a literal.
func Validate(refs []ConfigReference) error {
	for i, r := range refs {
		if r.Property == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("value mapping at position %d does not declare a property", i),
				map[string]any{"index": i})
		}
		if !r.HasPaths() && r.Literal() == nil {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("the value mapping for %s does not have either a path or a default value", r.Property),
				map[string]any{"property": r.Property})
		}
	}
	return nil
}
