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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNgramsShortString(t *testing.T) {
	require.Empty(t, Ngrams("a"))
	require.Empty(t, Ngrams(""))
}

func TestNgramsDedup(t *testing.T) {
	// "aaa" has two overlapping windows "aa","aa" that collapse to one key.
	set := Ngrams("aaa")
	require.Len(t, set, 1)
}

func TestNgramKeysSorted(t *testing.T) {
	keys := NgramKeys("dcba")
	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i])
	}
}

func TestTokenKeyBijective(t *testing.T) {
	require.NotEqual(t, TokenKey('a', 'b'), TokenKey('b', 'a'))
	require.Equal(t, TokenKey('a', 'b'), TokenKey('a', 'b'))
}
