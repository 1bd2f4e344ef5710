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

package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/values"
)

const (
	DefaultAPIVersion    = "v2"
	DefaultInputFolder   = "helm"
	DefaultOutputFolder  = "helm"
	DefaultExtension     = "tar.gz"
	DefaultNotesResource = "NOTES.template.txt"
)

// SupportedExtensions lists the archive formats the packager can produce.
var SupportedExtensions = []string{"tar.gz", "tgz", "tar", "tar.xz", "txz", "zip"}

// Maintainer is a chart maintainer entry.
type Maintainer struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Annotation is a key/value chart annotation.
type Annotation struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Dependency is a chart dependency. Alias defaults to Name, Enabled to true.
type Dependency struct {
	Name       string   `json:"name" yaml:"name"`
	Alias      string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Version    string   `json:"version" yaml:"version"`
	Repository string   `json:"repository" yaml:"repository"`
	Condition  string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// AliasOrName returns the alias, or the name when no alias is set.
func (d Dependency) AliasOrName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}

// IsEnabled reports the enabled flag, true when unset.
func (d Dependency) IsEnabled() bool {
	return ptr.Deref(d.Enabled, true)
}

// AddIfStatement declares a boolean property guarding the resources that
// match the kind and name filters. Empty filters match everything.
type AddIfStatement struct {
	Property         string `json:"property" yaml:"property"`
	OnResourceKind   string `json:"onResourceKind,omitempty" yaml:"onResourceKind,omitempty"`
	OnResourceName   string `json:"onResourceName,omitempty" yaml:"onResourceName,omitempty"`
	WithDefaultValue *bool  `json:"withDefaultValue,omitempty" yaml:"withDefaultValue,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultValue returns the value published for the flag, true when unset.
func (s AddIfStatement) DefaultValue() bool {
	return ptr.Deref(s.WithDefaultValue, true)
}

// Expression replaces the value at Path with a raw template expression.
type Expression struct {
	Path       string `json:"path" yaml:"path"`
	Expression string `json:"expression" yaml:"expression"`
}

// Push configures publishing the packaged chart to an OCI registry.
type Push struct {
	// Reference is the registry namespace, e.g. oci://ghcr.io/org/charts.
	Reference   string `json:"reference" yaml:"reference"`
	PlainHTTP   bool   `json:"plainHTTP,omitempty" yaml:"plainHTTP,omitempty"`
	InsecureTLS bool   `json:"insecureTLS,omitempty" yaml:"insecureTLS,omitempty"`
}

// Config is the chart configuration.
type Config struct {
	Name         string       `json:"name" yaml:"name"`
	Version      string       `json:"version,omitempty" yaml:"version,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Home         string       `json:"home,omitempty" yaml:"home,omitempty"`
	Sources      []string     `json:"sources,omitempty" yaml:"sources,omitempty"`
	Maintainers  []Maintainer `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Icon         string       `json:"icon,omitempty" yaml:"icon,omitempty"`
	APIVersion   string       `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Condition    string       `json:"condition,omitempty" yaml:"condition,omitempty"`
	Tags         string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	AppVersion   string       `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
	Deprecated   bool         `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	KubeVersion  string       `json:"kubeVersion,omitempty" yaml:"kubeVersion,omitempty"`
	Keywords     []string     `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Type         string       `json:"type,omitempty" yaml:"type,omitempty"`

	Values          []values.ConfigReference `json:"values,omitempty" yaml:"values,omitempty"`
	AddIfStatements []AddIfStatement         `json:"addIfStatements,omitempty" yaml:"addIfStatements,omitempty"`
	Expressions     []Expression             `json:"expressions,omitempty" yaml:"expressions,omitempty"`
	ValuesRootAlias string                   `json:"valuesRootAlias,omitempty" yaml:"valuesRootAlias,omitempty"`

	// Notes names the NOTES.txt resource used when the input folder has none.
	Notes        string `json:"notes,omitempty" yaml:"notes,omitempty"`
	InputFolder  string `json:"inputFolder,omitempty" yaml:"inputFolder,omitempty"`
	OutputFolder string `json:"outputFolder,omitempty" yaml:"outputFolder,omitempty"`

	CreateTarFile     bool   `json:"createTarFile,omitempty" yaml:"createTarFile,omitempty"`
	Extension         string `json:"extension,omitempty" yaml:"extension,omitempty"`
	TarFileClassifier string `json:"tarFileClassifier,omitempty" yaml:"tarFileClassifier,omitempty"`
	CreateChecksums   bool   `json:"createChecksums" yaml:"createChecksums"`

	CreateValuesSchemaFile bool `json:"createValuesSchemaFile" yaml:"createValuesSchemaFile"`
	CreateReadmeFile       bool `json:"createReadmeFile" yaml:"createReadmeFile"`

	Push *Push `json:"push,omitempty" yaml:"push,omitempty"`
}

// Flags converts the conditional statements into value contributions.
func (c *Config) Flags() []values.Flag {
	flags := make([]values.Flag, 0, len(c.AddIfStatements))
	for _, s := range c.AddIfStatements {
		flags = append(flags, values.Flag{
			Property:    s.Property,
			Description: s.Description,
			Default:     s.DefaultValue(),
		})
	}
	return flags
}

// ChartVersion returns the configured version, or projectVersion when unset.
func (c *Config) ChartVersion(projectVersion string) string {
	if c.Version != "" {
		return c.Version
	}
	return projectVersion
}

// Validate checks the settings that make a chart unusable. Suspicious but
// workable values are logged as warnings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "helm chart name is required")
	}

	if !slices.Contains(SupportedExtensions, c.Extension) {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported archive extension %q (must be one of %s)",
				c.Extension, strings.Join(SupportedExtensions, ", ")),
			map[string]any{"extension": c.Extension})
	}

	for i, d := range c.Dependencies {
		if d.Name == "" || d.Version == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("dependency at position %d requires name and version", i),
				map[string]any{"index": i, "name": d.Name})
		}
	}

	for i, s := range c.AddIfStatements {
		if strings.TrimSpace(s.Property) == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("if statement at position %d does not declare a property", i),
				map[string]any{"index": i})
		}
	}

	for i, e := range c.Expressions {
		if e.Path == "" || e.Expression == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("expression at position %d requires path and expression", i),
				map[string]any{"index": i})
		}
	}

	if c.Push != nil && c.Push.Reference != "" {
		if !c.CreateTarFile {
			return errors.New(errors.ErrCodeInvalidConfig, "pushing a chart requires createTarFile")
		}
		if c.Extension != "tar.gz" && c.Extension != "tgz" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"pushing a chart requires a tar.gz or tgz archive",
				map[string]any{"extension": c.Extension})
		}
	}

	if msgs := validation.IsDNS1123Subdomain(c.Name); len(msgs) > 0 {
		slog.Warn("chart name is not a valid DNS-1123 subdomain",
			"name", c.Name, "reasons", strings.Join(msgs, "; "))
	}

	if c.Version != "" {
		if _, err := semver.StrictNewVersion(c.Version); err != nil {
			slog.Warn("chart version is not strict SemVer 2", "version", c.Version, "error", err)
		}
	}

	return nil
}

// Option configures a Config.
type Option func(*Config)

// WithName sets the chart name.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithVersion sets an explicit chart version.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

// WithDescription sets the chart description.
func WithDescription(description string) Option {
	return func(c *Config) {
		c.Description = description
	}
}

// WithValues appends value bindings.
func WithValues(refs ...values.ConfigReference) Option {
	return func(c *Config) {
		c.Values = append(c.Values, refs...)
	}
}

// WithAddIfStatements appends conditional statements.
func WithAddIfStatements(statements ...AddIfStatement) Option {
	return func(c *Config) {
		c.AddIfStatements = append(c.AddIfStatements, statements...)
	}
}

// WithExpressions appends path expressions.
func WithExpressions(expressions ...Expression) Option {
	return func(c *Config) {
		c.Expressions = append(c.Expressions, expressions...)
	}
}

// WithDependencies appends chart dependencies.
func WithDependencies(deps ...Dependency) Option {
	return func(c *Config) {
		c.Dependencies = append(c.Dependencies, deps...)
	}
}

// WithValuesRootAlias nests every property under alias.
func WithValuesRootAlias(alias string) Option {
	return func(c *Config) {
		c.ValuesRootAlias = alias
	}
}

// WithTarFile enables archive creation with the given extension and
// optional classifier. An empty extension keeps the current one.
func WithTarFile(extension, classifier string) Option {
	return func(c *Config) {
		c.CreateTarFile = true
		if extension != "" {
			c.Extension = extension
		}
		c.TarFileClassifier = classifier
	}
}

// WithValuesSchema toggles values.schema.json generation.
func WithValuesSchema(enabled bool) Option {
	return func(c *Config) {
		c.CreateValuesSchemaFile = enabled
	}
}

// WithReadme toggles README.md generation.
func WithReadme(enabled bool) Option {
	return func(c *Config) {
		c.CreateReadmeFile = enabled
	}
}

// WithNotes sets the NOTES.txt resource name. Empty disables bundled notes.
func WithNotes(resource string) Option {
	return func(c *Config) {
		c.Notes = resource
	}
}

// WithFolders sets the input and output folder names.
func WithFolders(input, output string) Option {
	return func(c *Config) {
		if input != "" {
			c.InputFolder = input
		}
		if output != "" {
			c.OutputFolder = output
		}
	}
}

// WithPush enables publishing to an OCI registry.
func WithPush(push Push) Option {
	return func(c *Config) {
		c.Push = &push
	}
}

// NewConfig returns a Config with default values.
func NewConfig(options ...Option) *Config {
	c := &Config{
		APIVersion:             DefaultAPIVersion,
		InputFolder:            DefaultInputFolder,
		OutputFolder:           DefaultOutputFolder,
		Extension:              DefaultExtension,
		Notes:                  DefaultNotesResource,
		CreateChecksums:        true,
		CreateValuesSchemaFile: true,
		CreateReadmeFile:       true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
