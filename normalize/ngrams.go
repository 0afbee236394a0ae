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

package normalize

import zmh "github.com/zhongfly/zmh-search"

// NgramSet normalizes text and returns its deduplicated bigram key set.
func NgramSet(text string) map[uint32]struct{} {
	return zmh.Ngrams(Normalize(text))
}

// NgramKeys normalizes text and returns its bigram key set as a sorted
// slice.
func NgramKeys(text string) []uint32 {
	return zmh.NgramKeys(Normalize(text))
}
