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

// Package chart assembles the non-template parts of a Helm chart.
//
// The Assembler adds, in order: Chart.yaml, values.yaml and one
// values.<profile>.yaml per profile, values.schema.json, README.md, the
// empty charts/ directory, templates/NOTES.txt and the pass-through files
// (LICENSE, app-readme.md, questions and requirements files, crds/) found
// in the input folder.
//
// Every generated YAML or JSON file is laid over the file of the same name
// in the input folder when one exists: the generated values win, sections
// only present in the user file are kept.
package chart
