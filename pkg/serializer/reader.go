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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/k8s/client"
)

const (
	// ConfigMapURIScheme prefixes ConfigMap sources.
	ConfigMapURIScheme = "cm://"

	configMapReadTimeout = 30 * time.Second
)

// Loader reads configuration sources.
type Loader struct {
	kubeconfig string
	kube       client.Interface
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithKubeconfig sets the kubeconfig used for ConfigMap sources.
func WithKubeconfig(path string) LoaderOption {
	return func(l *Loader) {
		l.kubeconfig = path
	}
}

// WithKubeClient sets the client used for ConfigMap sources.
func WithKubeClient(c client.Interface) LoaderOption {
	return func(l *Loader) {
		l.kube = c
	}
}

// NewLoader returns a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load decodes source into v. Fields absent from the source keep their
// current value.
func (l *Loader) Load(ctx context.Context, source string, v any) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "source is required")
	}

	var (
		data   []byte
		format Format
		err    error
	)
	if strings.HasPrefix(source, ConfigMapURIScheme) {
		data, format, err = l.readConfigMap(ctx, source)
	} else {
		format = FormatFromPath(source)
		data, err = os.ReadFile(source)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s", source), err)
		}
	}
	if err != nil {
		return err
	}

	if err := Decode(format, data, v); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidConfig, "failed to decode configuration", err,
			map[string]any{"source": source})
	}

	slog.Debug("configuration loaded", "source", source, "format", format)
	return nil
}

// Decode unmarshals data in format into v.
func Decode(format Format, data []byte, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (l *Loader) readConfigMap(ctx context.Context, uri string) ([]byte, Format, error) {
	namespace, name, key, err := parseConfigMapURI(uri)
	if err != nil {
		return nil, "", err
	}

	kube := l.kube
	if kube == nil {
		kube, _, err = client.New(l.kubeconfig)
		if err != nil {
			return nil, "", err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, configMapReadTimeout)
	defer cancel()

	cm, err := kube.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, "", errors.WrapWithContext(errors.ErrCodeNotFound, "failed to get ConfigMap", err,
			map[string]any{"namespace": namespace, "name": name})
	}

	if key == "" {
		keys := make([]string, 0, len(cm.Data))
		for k := range cm.Data {
			keys = append(keys, k)
		}
		if len(keys) != 1 {
			slices.Sort(keys)
			return nil, "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("ConfigMap %s/%s has %d data keys; name one as cm://%s/%s/<key>", namespace, name, len(keys), namespace, name),
				map[string]any{"keys": keys})
		}
		key = keys[0]
	}

	content, ok := cm.Data[key]
	if !ok {
		return nil, "", errors.NewWithContext(errors.ErrCodeNotFound,
			fmt.Sprintf("ConfigMap %s/%s has no key %q", namespace, name, key),
			map[string]any{"namespace": namespace, "name": name})
	}

	slog.Debug("reading from ConfigMap", "namespace", namespace, "name", name, "key", key, "size", len(content))
	return []byte(content), FormatFromPath(key), nil
}

// parseConfigMapURI splits cm://namespace/name[/key].
func parseConfigMapURI(uri string) (namespace, name, key string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid ConfigMap URI %q", uri))
	}

	parts := strings.Split(strings.TrimPrefix(uri, ConfigMapURIScheme), "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI %q, expected cm://namespace/name[/key]", uri))
	}
	if len(parts) == 3 {
		if parts[2] == "" {
			return "", "", "", errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid ConfigMap URI %q, empty key", uri))
		}
		key = parts[2]
	}
	return parts[0], parts[1], key, nil
}
