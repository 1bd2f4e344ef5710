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

package server

import (
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// Config holds server configuration. Zero fields are read from the
// environment by NewConfig.
type Config struct {
	Address string `env:"ADDRESS"`
	Port    int    `env:"PORT" envDefault:"8080"`

	// OutputRoot is the directory charts are written below.
	OutputRoot string `env:"CHARTWRITER_OUTPUT_ROOT"`

	RateLimit      rate.Limit `env:"RATE_LIMIT" envDefault:"10"`
	RateLimitBurst int        `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// AllowPush lets chart requests push to a registry with the server's
	// registry credentials.
	AllowPush bool `env:"CHARTWRITER_ALLOW_PUSH"`

	// AllowDependencies lets chart requests run the Helm dependency build.
	AllowDependencies bool `env:"CHARTWRITER_ALLOW_DEPENDENCIES"`

	// MaxBodyBytes caps the size of a chart request.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"120s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// NewConfig returns the configuration parsed from the environment.
func NewConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to parse server environment", err)
	}
	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Port:            8080,
		RateLimit:       10,
		RateLimitBurst:  20,
		MaxBodyBytes:    10 << 20,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    120 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}
