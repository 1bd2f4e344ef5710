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
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// Helm chart media types.
const (
	ConfigMediaType     = "application/vnd.cncf.helm.config.v1+json"
	ChartLayerMediaType = "application/vnd.cncf.helm.chart.content.v1.tar+gzip"
)

// Chart is a packaged chart ready to push.
type Chart struct {
	Name    string
	Version string
	// Archive is the path of the gzipped chart tarball.
	Archive string
	// Config is the chart metadata encoded as JSON.
	Config []byte
}

// PushOptions configures the registry connection.
type PushOptions struct {
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult describes a pushed chart.
type PushResult struct {
	Digest    string `json:"digest" yaml:"digest"`
	Reference string `json:"reference" yaml:"reference"`
}

// PushChart pushes chart to <ref>/<chart name>:<version>.
func PushChart(ctx context.Context, ref *Reference, chart Chart, opts PushOptions) (*PushResult, error) {
	if ref == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "push reference is required")
	}
	if chart.Name == "" || chart.Version == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "chart name and version are required to push")
	}

	imageRef := ref.ImageReference(chart.Name, chart.Version)
	if _, err := reference.ParseNormalizedNamed(imageRef); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, fmt.Sprintf("invalid image reference %q", imageRef), err)
	}

	repo, err := remote.NewRepository(ref.Repository(chart.Name))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	slog.Info("pushing helm chart", "reference", imageRef)

	desc, err := push(ctx, chart, repo)
	if err != nil {
		return nil, err
	}

	slog.Info("helm chart pushed", "reference", imageRef, "digest", desc.Digest.String())
	return &PushResult{Digest: desc.Digest.String(), Reference: imageRef}, nil
}

// push packs chart into an in-memory store and copies it to dst.
func push(ctx context.Context, chart Chart, dst oras.Target) (ociv1.Descriptor, error) {
	store := memory.New()
	manifest, err := pack(ctx, store, chart)
	if err != nil {
		return ociv1.Descriptor{}, err
	}

	tag := Tag(chart.Version)
	if err := store.Tag(ctx, manifest, tag); err != nil {
		return ociv1.Descriptor{}, errors.Wrap(errors.ErrCodeInternal, "failed to tag manifest in local store", err)
	}

	desc, err := oras.Copy(ctx, store, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return ociv1.Descriptor{}, errors.Wrap(errors.ErrCodeExternalTool, "failed to push chart to registry", err)
	}
	return desc, nil
}

// pack stores the chart config, layer and manifest in store.
func pack(ctx context.Context, store content.Pusher, chart Chart) (ociv1.Descriptor, error) {
	data, err := os.ReadFile(chart.Archive)
	if err != nil {
		return ociv1.Descriptor{}, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s", chart.Archive), err)
	}

	layer, err := oras.PushBytes(ctx, store, ChartLayerMediaType, data)
	if err != nil {
		return ociv1.Descriptor{}, errors.Wrap(errors.ErrCodeInternal, "failed to store chart layer", err)
	}

	config, err := oras.PushBytes(ctx, store, ConfigMediaType, chart.Config)
	if err != nil {
		return ociv1.Descriptor{}, errors.Wrap(errors.ErrCodeInternal, "failed to store chart config", err)
	}

	manifest, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, "", oras.PackManifestOptions{
		Layers:           []ociv1.Descriptor{layer},
		ConfigDescriptor: &config,
		ManifestAnnotations: map[string]string{
			ociv1.AnnotationTitle:   chart.Name,
			ociv1.AnnotationVersion: chart.Version,
		},
	})
	if err != nil {
		return ociv1.Descriptor{}, errors.Wrap(errors.ErrCodeInternal, "failed to pack manifest", err)
	}
	return manifest, nil
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credentials unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{} //nolint:gosec
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
