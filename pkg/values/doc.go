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

// Package values resolves value bindings into per-profile value buckets.
//
// A value binding (ConfigReference) names a property and, optionally, the
// document paths it is read from and substituted at. Bindings come from
// three origins, merged by Resolve into one ordered list:
//
//  1. bindings declared in the chart configuration, in declaration order;
//  2. one synthetic binding per conditional flag, carrying the flag default;
//  3. bindings contributed by manifest decorators, in reverse application order.
//
// List order is precedence order. Apply walks the list once per document and
// the first binding that yields a value for a property wins; later bindings
// for the same property only re-target that value into their profile.
//
// Resolved values land in Buckets: a default bucket plus one bucket per
// named profile. Partition fills every profile bucket with the default
// entries it does not override.
package values
