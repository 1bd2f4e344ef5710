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

package packager

import (
	"context"
	_ "crypto/sha256" // registers digest.SHA256
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

// ChecksumFileName is the name of the checksum file written next to archives.
const ChecksumFileName = "checksums.txt"

// WriteChecksums writes a SHA-256 line for every file to dir/checksums.txt,
// in the "<hex>  <path>" format sha256sum reads. Paths are relative to dir.
func WriteChecksums(ctx context.Context, dir string, files []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(errors.ErrCodeTimeout, "checksum generation cancelled", err)
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		d, err := FileDigest(file)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", d.Encoded(), filepath.ToSlash(rel)))
	}

	target := filepath.Join(dir, ChecksumFileName)
	if err := os.WriteFile(target, []byte(strings.Join(lines, "\n")+"\n"), archivePerm); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to write %s", target), err)
	}

	slog.Debug("checksums generated", "file_count", len(lines), "path", target)
	return target, nil
}

// FileDigest returns the SHA-256 digest of a file.
func FileDigest(file string) (digest.Digest, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to read %s for checksum", file), err)
	}
	defer f.Close()

	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to hash %s", file), err)
	}
	return d, nil
}
