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
	"sort"

	"github.com/pkg/errors"
)

// DictEntry is one token's row across the dict.bin parallel arrays: which
// index shard its postings live in, where within that shard, and its
// document frequency.
type DictEntry struct {
	Key     uint32
	ShardID uint8
	Offset  uint32
	Length  uint16
	DF      uint16
}

// Dict is the decoded dict.bin. DictEntry.Key is sorted ascending, so
// Lookup can binary-search it.
type Dict struct {
	Entries []DictEntry
}

// Lookup does a binary search for key. Returns (index, true) on a hit.
func (d *Dict) Lookup(key uint32) (int, bool) {
	i := sort.Search(len(d.Entries), func(i int) bool { return d.Entries[i].Key >= key })
	if i < len(d.Entries) && d.Entries[i].Key == key {
		return i, true
	}
	return 0, false
}

// EncodeDict writes dict.bin. entries must already be sorted ascending by
// Key; EncodeDict does not sort defensively because the builder is the only
// writer and is responsible for the invariant.
func EncodeDict(entries []DictEntry) []byte {
	w := &binWriter{}
	w.bytes(MagicDict[:])
	w.u16(Schema)
	w.u16(N)
	w.u32(uint32(len(entries)))
	w.u32(0) // reserved

	for _, e := range entries {
		w.u32(e.Key)
	}
	w.pad()
	for _, e := range entries {
		w.u8(e.ShardID)
	}
	w.pad()
	for _, e := range entries {
		w.u32(e.Offset)
	}
	w.pad()
	for _, e := range entries {
		w.u16(e.Length)
	}
	w.pad()
	for _, e := range entries {
		w.u16(e.DF)
	}
	w.pad()

	return w.buf
}

// DecodeDict parses dict.bin.
func DecodeDict(b []byte) (*Dict, error) {
	r := newBinReader(b)

	magic := r.u8Array(4)
	version := r.u16()
	n := r.u16()
	count := int(r.u32())
	_ = r.u32() // reserved
	if r.err != nil {
		return nil, r.err
	}
	if string(magic) != string(MagicDict[:]) {
		return nil, errors.Errorf("comicidx: dict: bad magic %q", magic)
	}
	if version != Schema {
		return nil, errors.Errorf("comicidx: dict: unsupported version %d, want %d", version, Schema)
	}
	if n != N {
		return nil, errors.Errorf("comicidx: dict: unsupported n=%d, want %d", n, N)
	}

	keys := r.u32Array(count)
	r.padAfter(count * 4)
	shardIDs := r.u8Array(count)
	r.padAfter(count)
	offsets := r.u32Array(count)
	r.padAfter(count * 4)
	lengths := r.u16Array(count)
	r.padAfter(count * 2)
	dfs := r.u16Array(count)
	r.padAfter(count * 2)

	if r.err != nil {
		return nil, r.err
	}

	entries := make([]DictEntry, count)
	for i := 0; i < count; i++ {
		entries[i] = DictEntry{
			Key:     keys[i],
			ShardID: shardIDs[i],
			Offset:  offsets[i],
			Length:  lengths[i],
			DF:      dfs[i],
		}
	}
	for i := 1; i < count; i++ {
		if entries[i].Key < entries[i-1].Key {
			return nil, errors.New("comicidx: dict: keys not sorted ascending")
		}
	}
	return &Dict{Entries: entries}, nil
}
