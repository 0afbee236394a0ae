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

package index

import zmh "github.com/zhongfly/zmh-search"

// buildMetaShards partitions docs into contiguous chunks of metaShardDocs
// and encodes each chunk as a meta.bin shard. Cover bases are deduplicated
// independently within each shard, with index 0 always the reserved empty
// base, matching the per-shard baseCnt the format header carries.
func buildMetaShards(docs []zmh.Document, metaShardDocs int) [][]byte {
	if len(docs) == 0 {
		return [][]byte{zmh.EncodeMetaShard(&zmh.MetaShard{SepCode: zmh.DefaultSepCode, CoverBases: []string{""}})}
	}

	var shards [][]byte
	for start := 0; start < len(docs); start += metaShardDocs {
		end := start + metaShardDocs
		if end > len(docs) {
			end = len(docs)
		}
		shards = append(shards, buildMetaShard(docs[start:end]))
	}
	return shards
}

func buildMetaShard(docs []zmh.Document) []byte {
	count := len(docs)
	m := &zmh.MetaShard{
		SepCode:      zmh.DefaultSepCode,
		ExternalIDs:  make([]int32, count),
		Tags:         make([]zmh.TagBitset, count),
		Flags:        make([]byte, count),
		Titles:       make([]string, count),
		CoverPaths:   make([]string, count),
		CoverBaseIDs: make([]uint16, count),
		Authors:      make([]string, count),
		Aliases:      make([]string, count),
	}

	baseIndex := map[string]uint16{"": 0}
	coverBases := []string{""}

	for i := range docs {
		d := &docs[i]
		m.ExternalIDs[i] = d.ID
		m.Tags[i] = d.Tags
		m.Flags[i] = d.Flags
		m.Titles[i] = d.Title
		m.CoverPaths[i] = d.CoverPath
		m.Authors[i] = zmh.JoinField(d.Authors, m.SepCode)
		m.Aliases[i] = zmh.JoinField(d.Aliases, m.SepCode)

		id, ok := baseIndex[d.CoverBase]
		if !ok {
			id = uint16(len(coverBases))
			baseIndex[d.CoverBase] = id
			coverBases = append(coverBases, d.CoverBase)
		}
		m.CoverBaseIDs[i] = id
	}
	m.CoverBases = coverBases

	return zmh.EncodeMetaShard(m)
}
