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

// Package version reports build information for the chartwriter binary.
// Values are set at link time:
//
//	go build -ldflags "-X github.com/NVIDIA/chart-writer/pkg/version.version=v1.0.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const devVersion = "dev"

// overridden during build with ldflags
var (
	version = devVersion
	commit  = "unknown"
	date    = "unknown"
)

// Info is the build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// Get returns the build information. Without link-time values the module
// version recorded by the go tool is used when available.
func Get() Info {
	v := version
	if v == devVersion {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return Info{
		Version:   v,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
}

// String returns a one-line summary.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}
