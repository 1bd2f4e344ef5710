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

package cli

import (
	"github.com/caarlos0/env/v11"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// settings are process-level switches read from the environment.
type settings struct {
	HelmBin     string `env:"CHARTWRITER_HELM_BIN" envDefault:"helm"`
	PlainHTTP   bool   `env:"CHARTWRITER_PLAIN_HTTP"`
	InsecureTLS bool   `env:"CHARTWRITER_INSECURE_TLS"`
}

func loadSettings() (*settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to parse environment", err)
	}
	return &s, nil
}
