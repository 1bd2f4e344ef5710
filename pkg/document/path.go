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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/chart-writer/pkg/errors"
)

var indexPattern = regexp.MustCompile(`^\[(\d+)\]`)

// Path is a parsed document path.
type Path struct {
	raw      string
	segments []segment
}

type segment struct {
	key     string
	indexes []int
	filter  []condition
}

type condition struct {
	path  Path
	value string
}

// String returns the path as written.
func (p Path) String() string {
	return p.raw
}

// ParsePath parses a path expression.
func ParsePath(expr string) (Path, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return Path{}, errors.New(errors.ErrCodeInvalidConfig, "path is empty")
	}

	parts, err := splitSegments(raw)
	if err != nil {
		return Path{}, invalidPath(raw, err)
	}

	p := Path{raw: raw, segments: make([]segment, 0, len(parts))}
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Path{}, invalidPath(raw, err)
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

func invalidPath(raw string, cause error) error {
	return errors.WrapWithContext(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("invalid path %q", raw), cause, map[string]any{"path": raw})
}

// splitSegments splits on dots outside quotes and parentheses.
func splitSegments(expr string) ([]string, error) {
	var (
		parts []string
		cur   strings.Builder
		depth int
		quote rune
	)

	for _, r := range expr {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parenthesis")
			}
			cur.WriteRune(r)
		case r == '.' && depth == 0:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis")
	}
	parts = append(parts, cur.String())

	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil, fmt.Errorf("empty segment at position %d", i)
		}
	}
	return parts, nil
}

func parseSegment(raw string) (segment, error) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "(") {
		if !strings.HasSuffix(raw, ")") {
			return segment{}, fmt.Errorf("filter %q must end with ')'", raw)
		}
		conds, err := parseFilter(raw[1 : len(raw)-1])
		if err != nil {
			return segment{}, err
		}
		return segment{filter: conds}, nil
	}

	var seg segment
	rest := raw
	if q := rest[0]; q == '\'' || q == '"' {
		end := strings.IndexByte(rest[1:], q)
		if end < 0 {
			return segment{}, fmt.Errorf("unterminated quote in %q", raw)
		}
		seg.key = rest[1 : end+1]
		rest = rest[end+2:]
	} else {
		end := strings.IndexByte(rest, '[')
		if end < 0 {
			end = len(rest)
		}
		seg.key = rest[:end]
		rest = rest[end:]
	}

	for rest != "" {
		m := indexPattern.FindStringSubmatch(rest)
		if m == nil {
			return segment{}, fmt.Errorf("unexpected %q in segment %q", rest, raw)
		}
		i, err := strconv.Atoi(m[1])
		if err != nil {
			return segment{}, fmt.Errorf("invalid index in %q: %w", raw, err)
		}
		seg.indexes = append(seg.indexes, i)
		rest = rest[len(m[0]):]
	}
	return seg, nil
}

func parseFilter(expr string) ([]condition, error) {
	var conds []condition
	for _, clause := range strings.Split(expr, "&&") {
		lhs, rhs, ok := strings.Cut(clause, "==")
		if !ok {
			return nil, fmt.Errorf("filter clause %q must be of the form key == value", strings.TrimSpace(clause))
		}
		p, err := ParsePath(lhs)
		if err != nil {
			return nil, err
		}
		conds = append(conds, condition{path: p, value: unquote(strings.TrimSpace(rhs))})
	}
	return conds, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Find returns the nodes addressed by the path below root, in document
// order.
func (p Path) Find(root *yaml.Node) []*yaml.Node {
	nodes := []*yaml.Node{root}
	for _, seg := range p.segments {
		nodes = seg.apply(nodes)
		if len(nodes) == 0 {
			return nil
		}
	}
	return nodes
}

func (s segment) apply(nodes []*yaml.Node) []*yaml.Node {
	var out []*yaml.Node
	for _, n := range nodes {
		n = deref(n)
		switch {
		case s.filter != nil:
			out = append(out, s.selectMatching(n)...)
		case s.key != "":
			out = append(out, lookup(n, s.key)...)
		default:
			out = append(out, n)
		}
	}

	for _, i := range s.indexes {
		var indexed []*yaml.Node
		for _, n := range out {
			n = deref(n)
			if n.Kind == yaml.SequenceNode && i < len(n.Content) {
				indexed = append(indexed, n.Content[i])
			}
		}
		out = indexed
	}
	return out
}

func (s segment) selectMatching(n *yaml.Node) []*yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		if s.matches(n) {
			return []*yaml.Node{n}
		}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range n.Content {
			if s.matches(deref(item)) {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

func (s segment) matches(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for _, c := range s.filter {
		ok := false
		for _, found := range c.path.Find(n) {
			found = deref(found)
			if found.Kind == yaml.ScalarNode && found.Value == c.value {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// lookup returns the value for key in a mapping, or in each mapping item
// of a sequence.
func lookup(n *yaml.Node, key string) []*yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		if v := mappingValue(n, key); v != nil {
			return []*yaml.Node{v}
		}
	case yaml.SequenceNode:
		var out []*yaml.Node
		for _, item := range n.Content {
			if v := mappingValue(deref(item), key); v != nil {
				out = append(out, v)
			}
		}
		return out
	}
	return nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
