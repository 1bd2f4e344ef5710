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
	"strings"
)

const (
	// ValuesPrefix is the Helm values accessor used in placeholder expressions.
	ValuesPrefix = ".Values."

	placeholderOpen  = "{{ "
	placeholderClose = " }}"
)

// ConfigReference is a single value binding.
type ConfigReference struct {
	// Property is the dotted key the value is published under in values.yaml.
	Property string `json:"property" yaml:"property"`

	// Paths are document locations the value is read from and replaced at.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Value is a literal that takes precedence over any value found at Paths.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Expression replaces the default {{ .Values.<property> }} placeholder.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`

	// Profile scopes the value to values.<profile>.yaml.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	Minimum  *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum  *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Pattern  string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
}

// HasPaths reports whether the binding targets at least one document path.
func (r ConfigReference) HasPaths() bool {
	return len(r.Paths) > 0
}

// Literal returns the literal value, treating an empty string as absent.
func (r ConfigReference) Literal() any {
	if s, ok := r.Value.(string); ok && s == "" {
		return nil
	}
	return r.Value
}

// PlaceholderExpression returns the expression substituted at each path.
func (r ConfigReference) PlaceholderExpression() string {
	if strings.TrimSpace(r.Expression) != "" {
		return r.Expression
	}
	return DefaultExpression(r.Property)
}

// Flag is a conditional-flag declaration reduced to what contributes a value.
type Flag struct {
	Property    string
	Description string
	Default     any
}

// Contribution groups the bindings one decorator registered.
type Contribution struct {
	Source     string            `json:"source,omitempty" yaml:"source,omitempty"`
	References []ConfigReference `json:"references" yaml:"references"`
}

// DefaultExpression returns the placeholder for a normalized property.
func DefaultExpression(property string) string {
	return placeholderOpen + ValuesPrefix + property + placeholderClose
}

// NormalizeProperty strips any values accessor prefix from property and,
// when rootAlias is set, nests the property under it.
func NormalizeProperty(property, rootAlias string) string {
	name := strings.TrimSpace(property)
	for _, prefix := range []string{"$" + ValuesPrefix, ValuesPrefix, strings.TrimPrefix(ValuesPrefix, ".")} {
		if strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
			break
		}
	}

	alias := strings.Trim(strings.TrimSpace(rootAlias), ".")
	if alias == "" || name == alias || strings.HasPrefix(name, alias+".") {
		return name
	}
	return alias + "." + name
}
