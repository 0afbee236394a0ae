// Copyright 2017 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package zmh holds the shared types and binary artifact contract for the
// comic catalog search engine: the Document model, the tag bitset, the
// n-gram token key, and the on-disk meta/dict/postings/manifest format that
// the builder writes and the runtime engine reads.
//
// Subpackages implement the two halves that share this contract:
// normalize (text -> token alphabet), index (the offline builder), cache and
// loader (the runtime artifact loader), query (the planner) and engine (the
// posting evaluator, ranker and paginator).
package zmh
