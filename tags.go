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

package zmh

import (
	"encoding/json"
	"sort"
)

// TagsFile is the decoded tags.json.
type TagsFile struct {
	Version int       `json:"version"`
	Tags    []TagJSON `json:"tags"`
}

// TagJSON is one entry of tags.json's tags array. Bit is NoBit, emitted
// literally for round-trip simplicity, for a tag that did not make the top
// MaxTags cut.
type TagJSON struct {
	TagID uint16 `json:"tagId"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Bit   int    `json:"bit"`
}

// AssignBits implements the builder's tag-to-bit policy: sort by (count
// desc, tagId asc), assign bits 0..MaxTags-1 to the first MaxTags tags, drop
// the rest.
func AssignBits(tags []Tag) []Tag {
	out := make([]Tag, len(tags))
	copy(out, tags)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].TagID < out[j].TagID
	})
	for i := range out {
		if i < MaxTags {
			out[i].Bit = i
		} else {
			out[i].Bit = NoBit
		}
	}
	return out
}

// EncodeTagsFile marshals tags.json.
func EncodeTagsFile(tags []Tag) ([]byte, error) {
	tf := TagsFile{Version: 1, Tags: make([]TagJSON, len(tags))}
	for i, t := range tags {
		tf.Tags[i] = TagJSON{TagID: t.TagID, Name: t.Name, Count: t.Count, Bit: t.Bit}
	}
	return json.MarshalIndent(&tf, "", "  ")
}

// DecodeTagsFile parses tags.json.
func DecodeTagsFile(b []byte) ([]Tag, error) {
	var tf TagsFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return nil, err
	}
	out := make([]Tag, len(tf.Tags))
	for i, t := range tf.Tags {
		out[i] = Tag{TagID: t.TagID, Name: t.Name, Count: t.Count, Bit: t.Bit}
	}
	return out, nil
}
