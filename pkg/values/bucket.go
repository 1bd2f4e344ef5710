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

package values

import (
	"maps"
	"slices"
	"strings"
)

// Holder is the resolved value for one property in one bucket.
type Holder struct {
	Value     any
	Reference ConfigReference
}

// Bucket maps normalized property names to resolved values.
type Bucket map[string]*Holder

// Keys returns the bucket's properties in sorted order.
func (b Bucket) Keys() []string {
	return slices.Sorted(maps.Keys(b))
}

// Tree expands dotted properties into nested maps, the shape written to
// values files. When a property is both a leaf and a prefix of another
// property the nested map wins.
func (b Bucket) Tree() map[string]any {
	out := make(map[string]any, len(b))
	for _, key := range b.Keys() {
		setByPath(out, key, b[key].Value)
	}
	return out
}

func setByPath(target map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := target
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	last := parts[len(parts)-1]
	if _, isMap := current[last].(map[string]any); isMap {
		return
	}
	current[last] = value
}

// Buckets holds the default bucket and the named profile buckets.
type Buckets struct {
	Default  Bucket
	profiles map[string]Bucket
}

// NewBuckets returns empty buckets.
func NewBuckets() *Buckets {
	return &Buckets{
		Default:  make(Bucket),
		profiles: make(map[string]Bucket),
	}
}

// Put stores h under property in the bucket for profile. An empty profile
// selects the default bucket. Profile buckets are created on first use.
func (b *Buckets) Put(profile, property string, h *Holder) {
	b.bucket(profile)[property] = h
}

func (b *Buckets) bucket(profile string) Bucket {
	if profile == "" {
		return b.Default
	}
	bucket, ok := b.profiles[profile]
	if !ok {
		bucket = make(Bucket)
		b.profiles[profile] = bucket
	}
	return bucket
}

// Profile returns the bucket for a named profile, or nil if no binding
// targeted it.
func (b *Buckets) Profile(name string) Bucket {
	return b.profiles[name]
}

// Profiles returns the profile names in sorted order.
func (b *Buckets) Profiles() []string {
	return slices.Sorted(maps.Keys(b.profiles))
}

// Partition copies every default entry missing from a profile bucket into
// it. Copied entries share the default Holder.
func (b *Buckets) Partition() {
	for _, bucket := range b.profiles {
		for key, h := range b.Default {
			if _, ok := bucket[key]; !ok {
				bucket[key] = h
			}
		}
	}
}
