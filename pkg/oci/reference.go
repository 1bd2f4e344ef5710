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

package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// URIScheme prefixes OCI push targets.
const URIScheme = "oci://"

// Reference is a registry namespace charts are pushed below.
type Reference struct {
	// Registry is the registry host, e.g. "ghcr.io" or "localhost:5000".
	Registry string
	// Namespace is the repository path below the registry, e.g. "org/charts".
	Namespace string
}

// ParseReference parses oci://<registry>/<namespace>. The reference must
// not carry a tag or digest: the chart version is the tag.
func ParseReference(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("push reference must start with %s", URIScheme),
			map[string]any{"reference": target})
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(target, URIScheme), "/")
	if !strings.Contains(raw, "/") {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"push reference needs a registry and a namespace",
			map[string]any{"reference": target})
	}

	named, err := reference.ParseNormalizedNamed(raw)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidConfig, "invalid OCI reference", err,
			map[string]any{"reference": target})
	}
	if _, ok := named.(reference.Tagged); ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"push reference must not include a tag",
			map[string]any{"reference": target})
	}
	if _, ok := named.(reference.Digested); ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			"push reference must not include a digest",
			map[string]any{"reference": target})
	}

	return &Reference{
		Registry:  reference.Domain(named),
		Namespace: reference.Path(named),
	}, nil
}

// String returns the oci:// form of the reference.
func (r *Reference) String() string {
	return fmt.Sprintf("%s%s/%s", URIScheme, r.Registry, r.Namespace)
}

// Repository returns the registry repository a chart is pushed to.
func (r *Reference) Repository(chart string) string {
	return fmt.Sprintf("%s/%s/%s", r.Registry, r.Namespace, chart)
}

// ImageReference returns <registry>/<namespace>/<chart>:<tag>.
func (r *Reference) ImageReference(chart, version string) string {
	return fmt.Sprintf("%s:%s", r.Repository(chart), Tag(version))
}

// Tag converts a chart version to an OCI tag. OCI tags cannot contain "+",
// so SemVer build metadata is joined with "_" as helm does.
func Tag(version string) string {
	return strings.ReplaceAll(version, "+", "_")
}
