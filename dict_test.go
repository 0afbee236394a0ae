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

func TestDictRoundTripAndLookup(t *testing.T) {
	entries := []DictEntry{
		{Key: 10, ShardID: 0, Offset: 0, Length: 4, DF: 2},
		{Key: 20, ShardID: 1, Offset: 4, Length: 8, DF: 5},
		{Key: 300, ShardID: 0, Offset: 4, Length: 2, DF: 1},
	}
	enc := EncodeDict(entries)
	d, err := DecodeDict(enc)
	require.NoError(t, err)
	require.Equal(t, entries, d.Entries)

	idx, ok := d.Lookup(20)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = d.Lookup(15)
	require.False(t, ok)
}

func TestDecodeDictRejectsUnsortedKeys(t *testing.T) {
	entries := []DictEntry{
		{Key: 20},
		{Key: 10},
	}
	enc := EncodeDict(entries)
	_, err := DecodeDict(enc)
	require.Error(t, err)
}

func TestDecodeDictBadMagic(t *testing.T) {
	_, err := DecodeDict([]byte("garbage garbage garbage"))
	require.Error(t, err)
}
