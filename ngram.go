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

// N is the n-gram width used throughout the index: a bigram.
const N = 2

// TokenKey packs a 2-rune token into a single bijective 32-bit key:
// tokenKey = a*65536 + b, where a and b are the low 16 bits of the two
// runes' code points. Runes outside the Basic Multilingual Plane are rare in
// catalog text and are not worth a wider key; TokenKey only ever consumes
// the low 16 bits of each rune.
func TokenKey(a, b rune) uint32 {
	return uint32(uint16(a))*65536 + uint32(uint16(b))
}

// Ngrams returns the deduplicated set of length-n sliding windows over s,
// keyed by TokenKey. It is nil if s has fewer than N runes.
func Ngrams(s string) map[uint32]struct{} {
	runes := []rune(s)
	if len(runes) < N {
		return nil
	}
	out := make(map[uint32]struct{}, len(runes)-N+1)
	for i := 0; i+N <= len(runes); i++ {
		out[TokenKey(runes[i], runes[i+1])] = struct{}{}
	}
	return out
}

// NgramKeys is Ngrams with a stable, sorted ascending key slice instead of a
// set — used wherever iteration order must be deterministic (df-ascending
// processing order in the evaluator, or stable fixtures in tests).
func NgramKeys(s string) []uint32 {
	set := Ngrams(s)
	if len(set) == 0 {
		return nil
	}
	keys := make([]uint32, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sortUint32(keys)
	return keys
}

func sortUint32(s []uint32) {
	// insertion sort is fine: n-gram sets per term are tiny (query terms are
	// short strings), this is never run over a whole document's token set.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
