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

	"github.com/NVIDIA/chart-writer/pkg/config"
)

const defaultChartVersion = "0.1.0"

// Metadata is the content of Chart.yaml.
type Metadata struct {
	APIVersion   string              `json:"apiVersion" yaml:"apiVersion"`
	Name         string              `json:"name" yaml:"name"`
	Home         string              `json:"home,omitempty" yaml:"home,omitempty"`
	Sources      []string            `json:"sources,omitempty" yaml:"sources,omitempty"`
	Version      string              `json:"version" yaml:"version"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords     []string            `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Maintainers  []config.Maintainer `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Icon         string              `json:"icon,omitempty" yaml:"icon,omitempty"`
	Condition    string              `json:"condition,omitempty" yaml:"condition,omitempty"`
	Tags         string              `json:"tags,omitempty" yaml:"tags,omitempty"`
	AppVersion   string              `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
	Deprecated   bool                `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Annotations  map[string]string   `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	KubeVersion  string              `json:"kubeVersion,omitempty" yaml:"kubeVersion,omitempty"`
	Dependencies []Dependency        `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Type         string              `json:"type,omitempty" yaml:"type,omitempty"`
}

// Dependency is a Chart.yaml dependency entry.
type Dependency struct {
	Name       string   `json:"name" yaml:"name"`
	Version    string   `json:"version" yaml:"version"`
	Repository string   `json:"repository" yaml:"repository"`
	Condition  string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	Alias      string   `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// Build returns the chart metadata for cfg. The version is the configured
// one, else projectVersion.
func Build(cfg *config.Config, projectVersion string) *Metadata {
	m := &Metadata{
		APIVersion:  cfg.APIVersion,
		Name:        cfg.Name,
		Home:        cfg.Home,
		Sources:     cfg.Sources,
		Version:     normalizeVersion(cfg.ChartVersion(projectVersion)),
		Description: cfg.Description,
		Keywords:    cfg.Keywords,
		Maintainers: cfg.Maintainers,
		Icon:        cfg.Icon,
		Condition:   cfg.Condition,
		Tags:        cfg.Tags,
		AppVersion:  cfg.AppVersion,
		Deprecated:  cfg.Deprecated,
		KubeVersion: cfg.KubeVersion,
		Type:        cfg.Type,
	}

	if len(cfg.Annotations) > 0 {
		m.Annotations = make(map[string]string, len(cfg.Annotations))
		for _, a := range cfg.Annotations {
			m.Annotations[a.Key] = a.Value
		}
	}

	for _, d := range cfg.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{
			Name:       d.Name,
			Version:    d.Version,
			Repository: d.Repository,
			Condition:  d.Condition,
			Tags:       d.Tags,
			Enabled:    d.IsEnabled(),
			Alias:      d.AliasOrName(),
		})
	}
	return m
}

// normalizeVersion strips a leading "v" so the version is valid SemVer,
// and defaults an empty version.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultChartVersion
	}
	if len(v) > 1 && (v[0] == 'v' || v[0] == 'V') && v[1] >= '0' && v[1] <= '9' {
		return v[1:]
	}
	return v
}
