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
	"embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/values"
)

//go:embed resources/*
var resources embed.FS

const (
	resourcesDir   = "resources"
	readmeTemplate = "README.md.tmpl"
)

type readmeRow struct {
	Property    string
	Description string
	Value       any
}

type readmeData struct {
	Title    string
	Chart    *Metadata
	Profiles []string
	Values   []readmeRow
}

// BuildReadme renders README.md from the chart metadata and the default
// values.
func BuildReadme(m *Metadata, buckets *values.Buckets) (string, error) {
	content, err := resources.ReadFile(resourcesDir + "/" + readmeTemplate)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to load readme template", err)
	}

	tmpl, err := template.New(readmeTemplate).Funcs(sprig.TxtFuncMap()).Parse(string(content))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to parse readme template", err)
	}

	data := readmeData{
		Title:    title(m.Name),
		Chart:    m,
		Profiles: buckets.Profiles(),
	}
	for _, key := range buckets.Default.Keys() {
		h := buckets.Default[key]
		data.Values = append(data.Values, readmeRow{
			Property:    key,
			Description: h.Reference.Description,
			Value:       h.Value,
		})
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to render readme", err)
	}
	return b.String(), nil
}

// title turns a chart name such as "my-app" into "My App".
func title(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
