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

// MaxTags is the number of tag bit slots a document's bitset can address.
const MaxTags = 50

// Flag bits within Document.Flags. Bits 4 and 5 are not status bits: they
// carry the overflow of tag bits 48 and 49, which don't fit in the on-disk
// u16 tagHi (see TagBitset).
const (
	FlagHidden byte = 1 << iota
	FlagChapterHidden
	FlagNeedLogin
	FlagLocked
	flagTagBit48
	flagTagBit49
)

// Document is a single catalog record, addressed by a dense zero-based
// internal doc-id and carrying the external, user-visible ID alongside it.
type Document struct {
	// ID is the external, user-visible identifier. Sort order on ID is the
	// publication order.
	ID int32

	Title   string
	Aliases []string
	Authors []string

	// CoverBase and CoverPath together reconstitute the cover URL: Base is
	// the shared scheme+host+leading-path prefix, deduplicated within each
	// meta shard, Path is the per-document suffix.
	CoverBase string
	CoverPath string

	// Tags is the bitset over tag bit slots 0..49 this document carries.
	Tags TagBitset

	// Flags is the 8-bit status byte: bit 0 hidden, bit 1 chapter-hidden,
	// bit 2 need-login, bit 3 locked.
	Flags byte
}

// Hidden reports whether FlagHidden is set.
func (d *Document) Hidden() bool { return d.Flags&FlagHidden != 0 }

// ChapterHidden reports whether FlagChapterHidden is set.
func (d *Document) ChapterHidden() bool { return d.Flags&FlagChapterHidden != 0 }

// NeedLogin reports whether FlagNeedLogin is set.
func (d *Document) NeedLogin() bool { return d.Flags&FlagNeedLogin != 0 }

// Locked reports whether FlagLocked is set.
func (d *Document) Locked() bool { return d.Flags&FlagLocked != 0 }

// SearchableFields returns title, aliases and authors as the independent
// text fields the builder normalizes and n-grams separately before taking
// their union. Normalizing per-field, rather than concatenating raw strings
// first, avoids manufacturing a spurious n-gram that straddles a field
// boundary.
func (d *Document) SearchableFields() []string {
	fields := make([]string, 0, 1+len(d.Aliases)+len(d.Authors))
	fields = append(fields, d.Title)
	fields = append(fields, d.Aliases...)
	fields = append(fields, d.Authors...)
	return fields
}

// AliasesJoined returns the aliases joined for the full-text bonus checks in
// the ranker.
func (d *Document) AliasesJoined() string {
	return joinSep(d.Aliases)
}

// AuthorsJoined returns the authors joined for the full-text bonus checks in
// the ranker.
func (d *Document) AuthorsJoined() string {
	return joinSep(d.Authors)
}

func joinSep(ss []string) string {
	switch len(ss) {
	case 0:
		return ""
	case 1:
		return ss[0]
	}
	n := len(ss) - 1
	for _, s := range ss {
		n += len(s)
	}
	buf := make([]byte, 0, n)
	for i, s := range ss {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, s...)
	}
	return string(buf)
}

// CoverURL reconstructs the full cover URL from base and path.
func (d *Document) CoverURL() string {
	return d.CoverBase + d.CoverPath
}

// Tag describes one named category.
type Tag struct {
	TagID uint16
	Name  string
	Count int
	// Bit is the 6-bit slot (0..49) this tag was assigned by the builder.
	// Tags that did not make the top MaxTags by (count desc, tagId asc) have
	// Bit == NoBit and are not referenced by any document's bitset.
	Bit int
}

// NoBit marks a Tag that was dropped during bit assignment because it did
// not make the top MaxTags by (count desc, tagId asc).
const NoBit = -1
