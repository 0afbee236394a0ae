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

// Package index implements the offline index builder: it walks a row
// iterator over the source catalog and writes the meta/dict/postings/tags/
// manifest artifact set that the runtime engine loads.
//
// The row iterator itself is an external collaborator; this package only
// depends on the RowSource interface below, so the builder can be driven
// from a database cursor, a CSV file, or any other catalog source.
package index

// RowTag is one tag reference carried by a source row; the builder derives
// the global Tag table (and its bit assignment) from these across the
// whole corpus.
type RowTag struct {
	TagID uint16
	Name  string
}

// Row is one source record.
type Row struct {
	ID      int32
	Title   string
	Aliases []string
	Authors []string
	// Cover is the full cover URL; the builder splits it into a base,
	// deduplicated within each meta shard, and a per-doc suffix.
	Cover string
	Tags  []RowTag
	Flags byte
}

// RowSource yields catalog rows in any order; the builder sorts them by
// external ID before assigning doc-ids. Next returns io.EOF when exhausted.
type RowSource interface {
	Next() (*Row, error)
}
