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

// Package normalize canonicalizes arbitrary catalog text into the engine's
// token alphabet and generates n-grams over it.
//
// Classification is table-driven rather than a per-character Unicode
// category call on the hot path: acceptTable precomputes, once at init,
// whether each rune in the Basic Multilingual Plane is a letter or a
// number, trading a one-time 64KiB table build for a cheap array lookup on
// every rune normalized afterward.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// acceptTable[r] is true if rune r (0..0xFFFF) is a letter or a number and
// therefore survives normalization. Runes above the BMP fall back to a
// direct unicode.IsLetter/IsNumber check; they are rare in catalog titles
// and are not worth a 1M-entry table.
var acceptTable [0x10000]bool

func init() {
	for r := rune(0); r < 0x10000; r++ {
		acceptTable[r] = unicode.IsLetter(r) || unicode.IsNumber(r)
	}
}

func accept(r rune) bool {
	if r < 0x10000 {
		return acceptTable[r]
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Normalize canonicalizes text for indexing and querying: NFKC-compose,
// lowercase, then drop every code point that is not a letter or a number.
//
// Normalize is idempotent: NFKC and lowercasing are themselves idempotent,
// and the accept-table filter only ever removes runes, never introduces
// ones that a second pass would touch.
func Normalize(text string) string {
	composed := norm.NFKC.String(text)
	lowered := strings.ToLower(composed)

	out := make([]rune, 0, len(lowered))
	for _, r := range lowered {
		if accept(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
