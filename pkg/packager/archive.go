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
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

const (
	extTarGz = "tar.gz"
	extTgz   = "tgz"
	extTar   = "tar"
	extTarXz = "tar.xz"
	extTxz   = "txz"
	extZip   = "zip"

	archivePerm = 0644
)

// ArchiveName returns <name>-<version>[-<classifier>].<ext>.
func ArchiveName(name, version, classifier, ext string) string {
	if classifier != "" {
		classifier = "-" + classifier
	}
	return fmt.Sprintf("%s-%s%s.%s", name, version, classifier, strings.TrimPrefix(ext, "."))
}

type archiveEntry struct {
	src  string
	name string
	info fs.FileInfo
}

// CreateArchive writes the files below chartDir to target. Directories are
// expanded to the files they contain. Each entry is stored as prefix/<path
// relative to chartDir>. A partially written archive is removed on failure.
func CreateArchive(ctx context.Context, target, chartDir, prefix string, files []string) (err error) {
	ext := strings.TrimPrefix(archiveExtension(target), ".")
	if !slices.Contains([]string{extTarGz, extTgz, extTar, extTarXz, extTxz, extZip}, ext) {
		return errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported archive extension %q", ext),
			map[string]any{"target": target})
	}

	entries, err := collect(chartDir, prefix, files)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create directory for %s", target), err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, archivePerm)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create %s", target), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to close %s", target), cerr)
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	switch ext {
	case extZip:
		err = writeZip(ctx, f, entries)
	case extTar:
		err = writeTar(ctx, f, entries)
	case extTarXz, extTxz:
		err = writeXz(ctx, f, entries)
	default:
		err = writeGzip(ctx, f, entries)
	}
	if err != nil {
		return err
	}

	slog.Debug("archive created", "path", target, "entries", len(entries))
	return nil
}

// archiveExtension returns the extension of target, keeping the double
// extensions tar.gz and tar.xz together.
func archiveExtension(target string) string {
	base := filepath.Base(target)
	for _, ext := range []string{extTarGz, extTarXz} {
		if strings.HasSuffix(base, "."+ext) {
			return ext
		}
	}
	return strings.TrimPrefix(filepath.Ext(base), ".")
}

func collect(chartDir, prefix string, files []string) ([]archiveEntry, error) {
	seen := make(map[string]bool)
	var entries []archiveEntry

	add := func(p string, info fs.FileInfo) error {
		rel, err := filepath.Rel(chartDir, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.NewWithContext(errors.ErrCodeInternal,
				fmt.Sprintf("%s is outside the chart directory", p),
				map[string]any{"chartDir": chartDir})
		}
		name := path.Join(prefix, filepath.ToSlash(rel))
		if seen[name] {
			return nil
		}
		seen[name] = true
		entries = append(entries, archiveEntry{src: p, name: name, info: info})
		return nil
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to stat %s", file), err)
		}
		if !info.IsDir() {
			if err := add(file, info); err != nil {
				return nil, err
			}
			continue
		}
		walkErr := filepath.WalkDir(file, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return add(p, fi)
		})
		if walkErr != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to expand %s", file), walkErr)
		}
	}

	slices.SortFunc(entries, func(a, b archiveEntry) int {
		return strings.Compare(a.name, b.name)
	})
	return entries, nil
}

func writeGzip(ctx context.Context, w io.Writer, entries []archiveEntry) error {
	gw := gzip.NewWriter(w)
	if err := writeTar(ctx, gw, entries); err != nil {
		return err
	}
	if err := gw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "failed to finish gzip stream", err)
	}
	return nil
}

func writeXz(ctx context.Context, w io.Writer, entries []archiveEntry) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create xz writer", err)
	}
	if err := writeTar(ctx, xw, entries); err != nil {
		return err
	}
	if err := xw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "failed to finish xz stream", err)
	}
	return nil
}

func writeTar(ctx context.Context, w io.Writer, entries []archiveEntry) error {
	tw := tar.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, "archive creation cancelled", err)
		}
		hdr, err := tar.FileInfoHeader(e.info, "")
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to build header for %s", e.src), err)
		}
		hdr.Name = e.name
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to add %s", e.name), err)
		}
		if err := copyFile(tw, e.src); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "failed to finish tar stream", err)
	}
	return nil
}

func writeZip(ctx context.Context, w io.Writer, entries []archiveEntry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, "archive creation cancelled", err)
		}
		hdr, err := zip.FileInfoHeader(e.info)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to build header for %s", e.src), err)
		}
		hdr.Name = e.name
		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to add %s", e.name), err)
		}
		if err := copyFile(fw, e.src); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "failed to finish zip archive", err)
	}
	return nil
}

func copyFile(w io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to open %s", src), err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to archive %s", src), err)
	}
	return nil
}
