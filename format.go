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

import "encoding/binary"

// Schema is the current on-disk schema version written into every header.
// It bumps whenever the binary layout changes in an incompatible way.
const Schema uint16 = 1

// DefaultSepCode is the separator code point stamped into meta.bin headers:
// the builder joins multi-valued fields (authors, aliases) with it, and the
// decoder splits them again on the sepCode read back from the header.
const DefaultSepCode uint16 = 0x001F

// Magic byte sequences for each artifact.
var (
	MagicMeta = [4]byte{'Z', 'M', 'H', 'm'}
	MagicDict = [4]byte{'Z', 'M', 'H', 'd'}
)

// byteOrder is the endianness of every multi-byte integer in the binary
// artifact contract. Little-endian matches the typed-array reads the
// browser runtime performs directly against the fetched bytes.
var byteOrder = binary.LittleEndian

// MetaHeader is the 16-byte header at the start of every meta.bin shard.
type MetaHeader struct {
	Magic   [4]byte
	Version uint16
	SepCode uint16
	Count   uint32
	BaseCnt uint32
}

// DictHeader is the 16-byte header at the start of dict.bin.
type DictHeader struct {
	Magic    [4]byte
	Version  uint16
	N        uint16
	Count    uint32
	Reserved uint32
}

// pad4 returns the number of zero bytes needed after n bytes to reach the
// next 4-byte boundary. Every section is padded to a 4-byte boundary so the
// artifact remains readable with zero-copy typed-array views.
func pad4(n int) int {
	return (4 - n%4) % 4
}
