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

package client

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// EnvKubeconfig names the environment variable holding the kubeconfig path.
const EnvKubeconfig = "KUBECONFIG"

// Interface is kubernetes.Interface, aliased so callers can pass the
// client-go fake clientset.
type Interface = kubernetes.Interface

// New returns a client for kubeconfig, or for the discovered configuration
// when kubeconfig is empty.
func New(kubeconfig string) (Interface, *rest.Config, error) {
	config, err := RestConfig(kubeconfig)
	if err != nil {
		return nil, nil, err
	}

	c, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, "failed to create kubernetes client", err)
	}
	return c, config, nil
}

// RestConfig resolves the REST configuration for kubeconfig.
func RestConfig(kubeconfig string) (*rest.Config, error) {
	path := Kubeconfig(kubeconfig)
	if path == "" {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "no kubeconfig found and not running in a cluster", err)
		}
		return config, nil
	}

	config, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, fmt.Sprintf("failed to build kube config from %s", path), err)
	}
	return config, nil
}

// Kubeconfig returns the kubeconfig path to use, or "" for in-cluster.
func Kubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvKubeconfig); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}
