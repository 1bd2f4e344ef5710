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

package chart

import (
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/NVIDIA/chart-writer/pkg/values"
)

const (
	schemaDraft = "https://json-schema.org/draft-07/schema#"
	schemaTitle = "Values"

	typeObject = "object"
)

// BuildSchema derives a JSON schema from resolved values. Dotted
// properties become nested object schemas; each leaf carries the binding's
// description and validation constraints, and required bindings are listed
// in their parent's required set.
func BuildSchema(bucket values.Bucket) *jsonschema.Schema {
	root := objectSchema()
	root.Schema = schemaDraft
	root.Title = schemaTitle

	for _, key := range bucket.Keys() {
		h := bucket[key]
		parts := strings.Split(key, ".")

		parent := root
		for _, part := range parts[:len(parts)-1] {
			child := parent.Properties[part]
			if child == nil || child.Type != typeObject {
				child = objectSchema()
				parent.Properties[part] = child
			}
			if child.Properties == nil {
				child.Properties = make(map[string]*jsonschema.Schema)
			}
			parent = child
		}

		name := parts[len(parts)-1]
		if existing := parent.Properties[name]; existing != nil && len(existing.Properties) > 0 {
			if existing.Description == "" {
				existing.Description = h.Reference.Description
			}
			continue
		}

		parent.Properties[name] = leafSchema(h)
		if h.Reference.Required {
			parent.Required = append(parent.Required, name)
		}
	}
	return root
}

func objectSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       typeObject,
		Properties: make(map[string]*jsonschema.Schema),
	}
}

func leafSchema(h *values.Holder) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        schemaType(h.Value),
		Description: h.Reference.Description,
		Minimum:     h.Reference.Minimum,
		Maximum:     h.Reference.Maximum,
		Pattern:     h.Reference.Pattern,
	}
}

func schemaType(v any) string {
	switch n := v.(type) {
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32:
		return numberType(float64(n))
	case float64:
		return numberType(n)
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return typeObject
	default:
		return ""
	}
}

func numberType(f float64) string {
	if f == float64(int64(f)) {
		return "integer"
	}
	return "number"
}
