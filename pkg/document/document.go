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

package document

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	cwerrors "github.com/NVIDIA/chart-writer/pkg/errors"
)

const (
	kindList = "List"
	indent   = 2
)

// Document is one manifest file holding one or more resources.
type Document struct {
	Path      string
	Resources []*Resource
}

// Resource is a single Kubernetes-style object inside a document.
type Resource struct {
	doc  *yaml.Node
	node *yaml.Node

	// originals holds the values of nodes already replaced, so reading a
	// path twice yields the pre-substitution value.
	originals map[*yaml.Node]any
}

// Load reads and parses a manifest file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cwerrors.Wrap(cwerrors.ErrCodeIO, fmt.Sprintf("failed to read %s", path), err)
	}
	return Parse(path, data)
}

// Parse decodes every YAML document in data. Empty documents and
// documents whose root is not a mapping are skipped. Kubernetes List
// objects are expanded into their items.
func Parse(name string, data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	d := &Document{Path: name}

	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, cwerrors.WrapWithContext(cwerrors.ErrCodeIO,
				fmt.Sprintf("failed to parse %s", name), err, map[string]any{"file": name})
		}

		root := &n
		if root.Kind == yaml.DocumentNode {
			if len(root.Content) == 0 {
				continue
			}
			root = root.Content[0]
		}
		if root.Kind != yaml.MappingNode {
			slog.Debug("skipping non-mapping document", "file", name, "line", root.Line)
			continue
		}

		r := newResource(&n, root)
		if r.Kind() == kindList {
			d.Resources = append(d.Resources, r.items()...)
			continue
		}
		d.Resources = append(d.Resources, r)
	}
	return d, nil
}

// IsManifest reports whether a file name carries a YAML extension.
func IsManifest(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// ReadAndReplace replaces the nodes addressed by path in every resource
// with expression and returns the first non-null value found. An empty
// expression only reads.
func (d *Document) ReadAndReplace(path, expression string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	var found any
	for _, r := range d.Resources {
		v, err := r.readAndReplace(p, expression)
		if err != nil {
			return nil, err
		}
		if found == nil {
			found = v
		}
	}
	return found, nil
}

func newResource(doc, node *yaml.Node) *Resource {
	return &Resource{doc: doc, node: node, originals: make(map[*yaml.Node]any)}
}

func (r *Resource) items() []*Resource {
	seq := deref(mappingValue(r.node, "items"))
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	var out []*Resource
	for _, item := range seq.Content {
		if item = deref(item); item.Kind == yaml.MappingNode {
			out = append(out, newResource(nil, item))
		}
	}
	return out
}

// Node returns the resource's root mapping node.
func (r *Resource) Node() *yaml.Node {
	return r.node
}

// Kind returns the resource kind, or an empty string. Replaced values
// report what they held before substitution.
func (r *Resource) Kind() string {
	return r.scalar(mappingValue(r.node, "kind"))
}

// Name returns metadata.name, or an empty string.
func (r *Resource) Name() string {
	return r.scalar(mappingValue(deref(mappingValue(r.node, "metadata")), "name"))
}

func (r *Resource) scalar(n *yaml.Node) string {
	n = deref(n)
	if n == nil {
		return ""
	}
	if v, ok := r.originals[n]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// Read returns the first value found at path without modifying the resource.
func (r *Resource) Read(path string) (any, error) {
	return r.ReadAndReplace(path, "")
}

// ReadAndReplace replaces the nodes addressed by path with expression and
// returns the first non-null value previously held there.
func (r *Resource) ReadAndReplace(path, expression string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return r.readAndReplace(p, expression)
}

func (r *Resource) readAndReplace(p Path, expression string) (any, error) {
	var found any
	for _, n := range p.Find(r.node) {
		v, err := r.value(n)
		if err != nil {
			return nil, cwerrors.WrapWithContext(cwerrors.ErrCodeInternal,
				fmt.Sprintf("failed to decode value at %s", p), err, map[string]any{"path": p.String()})
		}
		if found == nil {
			found = v
		}
		if expression != "" {
			r.replace(n, expression, v)
		}
	}
	return found, nil
}

func (r *Resource) value(n *yaml.Node) (any, error) {
	if v, ok := r.originals[n]; ok {
		return v, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Resource) replace(n *yaml.Node, expression string, original any) {
	if _, ok := r.originals[n]; !ok {
		r.originals[n] = original
	}
	*n = yaml.Node{
		Kind:        yaml.ScalarNode,
		Tag:         "!!str",
		Style:       yaml.DoubleQuotedStyle,
		Value:       Escape(expression),
		HeadComment: n.HeadComment,
		LineComment: n.LineComment,
		FootComment: n.FootComment,
		Line:        n.Line,
		Column:      n.Column,
	}
}

// Marshal renders the resource as YAML with two-space indentation. Escaped
// expressions are left in place; see Cleanup.
func (r *Resource) Marshal() (string, error) {
	target := r.node
	if r.doc != nil {
		target = r.doc
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(target); err != nil {
		return "", cwerrors.Wrap(cwerrors.ErrCodeInternal, "failed to encode resource", err)
	}
	if err := enc.Close(); err != nil {
		return "", cwerrors.Wrap(cwerrors.ErrCodeInternal, "failed to flush resource", err)
	}
	return buf.String(), nil
}
