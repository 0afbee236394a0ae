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

import "github.com/pkg/errors"

// MetaShard is the decoded form of one meta.bin shard. CoverBases is this
// shard's local cover-base table; index 0 is always the reserved "empty"
// base. CoverBaseIDs indexes into CoverBases.
type MetaShard struct {
	SepCode      uint16
	ExternalIDs  []int32
	Tags         []TagBitset
	Flags        []byte
	Titles       []string
	CoverBases   []string
	CoverBaseIDs []uint16
	CoverPaths   []string
	// Authors and Aliases are stored pre-joined with SepCode between
	// multiple values of the same document. Use SplitField to recover the
	// value list for a document.
	Authors []string
	Aliases []string
}

// SplitField splits a joined multi-valued field back into its parts.
func SplitField(s string, sepCode uint16) []string {
	if s == "" {
		return nil
	}
	sep := rune(sepCode)
	var out []string
	start := 0
	runes := []rune(s)
	// sepCode (0x1F, "unit separator") is a control character that catalog
	// text does not normally contain, so a plain rune scan is used; a value
	// that does contain it is split at that point as well.
	for i, r := range runes {
		if r == sep {
			out = append(out, string(runes[start:i]))
			start = i + 1
		}
	}
	out = append(out, string(runes[start:]))
	return out
}

// JoinField joins parts with sepCode between them, the inverse of
// SplitField. Used by the builder to produce the pre-joined per-document
// strings that fill a meta shard's authors/aliases string pools.
func JoinField(parts []string, sepCode uint16) string {
	if len(parts) == 0 {
		return ""
	}
	sep := string(rune(sepCode))
	out := parts[0]
	for _, p := range parts[1:] {
		out += sep + p
	}
	return out
}

// Count returns the number of documents in the shard.
func (m *MetaShard) Count() int { return len(m.ExternalIDs) }

// Documents reconstitutes the shard's parallel arrays into Document values,
// resolving cover-base ids and splitting the joined multi-valued fields.
// Index i is the document's offset within this shard, not its global doc-id.
func (m *MetaShard) Documents() []Document {
	out := make([]Document, m.Count())
	for i := range out {
		out[i] = Document{
			ID:        m.ExternalIDs[i],
			Title:     m.Titles[i],
			Aliases:   SplitField(m.Aliases[i], m.SepCode),
			Authors:   SplitField(m.Authors[i], m.SepCode),
			CoverBase: m.CoverBases[m.CoverBaseIDs[i]],
			CoverPath: m.CoverPaths[i],
			Tags:      m.Tags[i],
			Flags:     m.Flags[i],
		}
	}
	return out
}

// EncodeMetaShard writes one meta.bin shard.
func EncodeMetaShard(m *MetaShard) []byte {
	count := m.Count()
	baseCnt := len(m.CoverBases)

	w := &binWriter{}
	w.bytes(MagicMeta[:])
	w.u16(Schema)
	sep := m.SepCode
	if sep == 0 {
		sep = DefaultSepCode
	}
	w.u16(sep)
	w.u32(uint32(count))
	w.u32(uint32(baseCnt))

	// 1. external ids (simple i32[count] schema)
	for _, id := range m.ExternalIDs {
		w.u32(uint32(id))
	}
	w.pad()

	// 2. tagLo u32[count], tagHi u16[count]
	for _, t := range m.Tags {
		w.u32(t.Lo)
	}
	for _, t := range m.Tags {
		w.u16(uint16(t.Hi & 0xFFFF))
	}
	w.pad()

	// 3. flags u8[count], carrying the tag-bit overflow for bits 48/49
	for i, t := range m.Tags {
		f := m.Flags[i]
		if t.Hi&(1<<16) != 0 {
			f |= flagTagBit48
		}
		if t.Hi&(1<<17) != 0 {
			f |= flagTagBit49
		}
		w.u8(f)
	}
	w.pad()

	// 4. titles string pool
	w.stringPool(m.Titles)

	// 5. coverBases string pool
	w.stringPool(m.CoverBases)

	// 6. coverBaseIds: u8[count] if baseCnt<=255 else u16[count]
	if baseCnt <= 255 {
		for _, id := range m.CoverBaseIDs {
			w.u8(byte(id))
		}
	} else {
		for _, id := range m.CoverBaseIDs {
			w.u16(id)
		}
	}
	w.pad()

	// 7. coverPaths string pool
	w.stringPool(m.CoverPaths)

	// 8. authors string pool (canonical schema)
	w.stringPool(m.Authors)

	// 9. aliases string pool
	w.stringPool(m.Aliases)

	return w.buf
}

// DecodeMetaShard parses one meta.bin shard body.
func DecodeMetaShard(b []byte) (*MetaShard, error) {
	r := newBinReader(b)

	magic := r.u8Array(4)
	version := r.u16()
	sepCode := r.u16()
	count := int(r.u32())
	baseCnt := int(r.u32())
	if r.err != nil {
		return nil, r.err
	}
	if string(magic) != string(MagicMeta[:]) {
		return nil, errors.Errorf("comicidx: meta shard: bad magic %q", magic)
	}
	if version != Schema {
		return nil, errors.Errorf("comicidx: meta shard: unsupported version %d, want %d", version, Schema)
	}

	extIDsU32 := r.u32Array(count)
	r.padAfter(count * 4)

	tagLo := r.u32Array(count)
	tagHi := r.u16Array(count)
	r.padAfter(count*4 + count*2)

	flags := r.u8Array(count)
	r.padAfter(count)

	titles := r.stringPool(count)
	coverBases := r.stringPool(baseCnt)

	var coverBaseIDs []uint16
	if baseCnt <= 255 {
		ids := r.u8Array(count)
		r.padAfter(count)
		coverBaseIDs = make([]uint16, count)
		for i, v := range ids {
			coverBaseIDs[i] = uint16(v)
		}
	} else {
		coverBaseIDs = r.u16Array(count)
		r.padAfter(count * 2)
	}

	coverPaths := r.stringPool(count)
	authors := r.stringPool(count)
	aliases := r.stringPool(count)

	if r.err != nil {
		return nil, r.err
	}

	extIDs := make([]int32, count)
	tags := make([]TagBitset, count)
	for i := 0; i < count; i++ {
		extIDs[i] = int32(extIDsU32[i])
		hi := uint32(tagHi[i])
		if flags[i]&flagTagBit48 != 0 {
			hi |= 1 << 16
		}
		if flags[i]&flagTagBit49 != 0 {
			hi |= 1 << 17
		}
		tags[i] = TagBitset{Lo: tagLo[i], Hi: hi}
		flags[i] &^= flagTagBit48 | flagTagBit49
	}

	return &MetaShard{
		SepCode:      sepCode,
		ExternalIDs:  extIDs,
		Tags:         tags,
		Flags:        flags,
		Titles:       titles,
		CoverBases:   coverBases,
		CoverBaseIDs: coverBaseIDs,
		CoverPaths:   coverPaths,
		Authors:      authors,
		Aliases:      aliases,
	}, nil
}
