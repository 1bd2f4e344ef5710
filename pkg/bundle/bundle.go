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

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Entry is a file or directory in the bundle. Path is slash-separated and
// relative to the bundle root.
type Entry struct {
	Path string
	Data []byte
	Dir  bool

	// Text marks generated content. Copied files are not text.
	Text bool
}

// Artifact describes a written entry.
type Artifact struct {
	Path    string
	Content string
	Text    bool
	Dir     bool
	Size    int64
}

// Artifacts maps absolute output paths to what was written there.
type Artifacts map[string]Artifact

// Paths returns the artifact paths in sorted order.
func (a Artifacts) Paths() []string {
	return slices.Sorted(maps.Keys(a))
}

// Bundle is an ordered set of entries rooted at a directory.
type Bundle struct {
	root    string
	entries []Entry
	index   map[string]int
}

// New returns an empty bundle that will be written below root.
func New(root string) *Bundle {
	return &Bundle{root: root, index: make(map[string]int)}
}

// Root returns the directory the bundle is written to.
func (b *Bundle) Root() string {
	return b.root
}

// AddText adds generated text content.
func (b *Bundle) AddText(p, content string) {
	b.add(Entry{Path: p, Data: []byte(content), Text: true})
}

// AddFile adds content copied from an input file.
func (b *Bundle) AddFile(p string, data []byte) {
	b.add(Entry{Path: p, Data: data})
}

// AddDir adds a directory, written even when nothing is placed inside it.
func (b *Bundle) AddDir(p string) {
	b.add(Entry{Path: p, Dir: true})
}

// add stores e, replacing an entry with the same path in place.
func (b *Bundle) add(e Entry) {
	e.Path = path.Clean(filepath.ToSlash(e.Path))
	if i, ok := b.index[e.Path]; ok {
		b.entries[i] = e
		return
	}
	b.index[e.Path] = len(b.entries)
	b.entries = append(b.entries, e)
}

// Get returns the entry at p.
func (b *Bundle) Get(p string) (Entry, bool) {
	i, ok := b.index[path.Clean(p)]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// Entries returns the entries in insertion order.
func (b *Bundle) Entries() []Entry {
	return slices.Clone(b.entries)
}

// Abs returns the absolute output path of a bundle-relative path.
func (b *Bundle) Abs(p string) string {
	return filepath.Join(b.root, filepath.FromSlash(p))
}

// Write materializes every entry in insertion order. Existing files are
// overwritten. Entries written before a failure stay on disk.
func (b *Bundle) Write(ctx context.Context) (Artifacts, error) {
	if err := os.MkdirAll(b.root, dirPerm); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create %s", b.root), err)
	}

	artifacts := make(Artifacts, len(b.entries))
	for _, e := range b.entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, "bundle write cancelled", err)
		}

		target := b.Abs(e.Path)
		if e.Dir {
			if err := os.MkdirAll(target, dirPerm); err != nil {
				return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create directory %s", target), err)
			}
			artifacts[target] = Artifact{Path: target, Dir: true}
			slog.Debug("directory created", "path", target)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to create directory for %s", target), err)
		}
		if err := os.WriteFile(target, e.Data, filePerm); err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, fmt.Sprintf("failed to write %s", target), err)
		}

		a := Artifact{Path: target, Text: e.Text, Size: int64(len(e.Data))}
		if e.Text {
			a.Content = string(e.Data)
		}
		artifacts[target] = a

		slog.Debug("file written",
			"path", target,
			"size_bytes", len(e.Data),
		)
	}
	return artifacts, nil
}
