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

// TagBitset is the in-memory tag bitset: bits 0..31 live in Lo, bits
// 32..49 live in the low 18 bits of Hi.
//
// On disk, meta.bin truncates Hi to its low 16 bits (tagHi: u16[count]);
// bits 48 and 49 do not fit and are packed into bits 4 and 5 of the
// per-document flags byte instead (flagTagBit48/flagTagBit49). EncodeMetaShard / DecodeMetaShard
// implement that split at the artifact boundary; every other part of the
// system (the evaluator, the planner, the builder's in-memory model) works
// with the full Hi word and never sees the split.
type TagBitset struct {
	Lo uint32
	Hi uint32
}

// Set marks bit as present. bit must be in [0, MaxTags).
func (b *TagBitset) Set(bit int) {
	if bit < 32 {
		b.Lo |= 1 << uint(bit)
	} else {
		b.Hi |= 1 << uint(bit-32)
	}
}

// Test reports whether bit is present.
func (b TagBitset) Test(bit int) bool {
	if bit < 32 {
		return b.Lo&(1<<uint(bit)) != 0
	}
	return b.Hi&(1<<uint(bit-32)) != 0
}

// ContainsAll reports whether every bit set in mask is also set in b.
func (b TagBitset) ContainsAll(mask TagBitset) bool {
	return b.Lo&mask.Lo == mask.Lo && b.Hi&mask.Hi == mask.Hi
}

// ContainsNone reports whether no bit set in mask is set in b.
func (b TagBitset) ContainsNone(mask TagBitset) bool {
	return b.Lo&mask.Lo == 0 && b.Hi&mask.Hi == 0
}

// Union returns the bitwise OR of a and b.
func Union(a, b TagBitset) TagBitset {
	return TagBitset{Lo: a.Lo | b.Lo, Hi: a.Hi | b.Hi}
}

// IsZero reports whether no bit is set.
func (b TagBitset) IsZero() bool {
	return b.Lo == 0 && b.Hi == 0
}

// MaskFromBits builds a TagBitset from a list of bit positions, as used when
// resolving the UI's selected/excluded tag lists into a selected or excluded
// mask.
func MaskFromBits(bits []int) TagBitset {
	var m TagBitset
	for _, bit := range bits {
		m.Set(bit)
	}
	return m
}
