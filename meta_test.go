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

func TestMetaShardRoundTrip(t *testing.T) {
	src := &MetaShard{
		SepCode:     DefaultSepCode,
		ExternalIDs: []int32{10, 20, 30},
		Tags: []TagBitset{
			MaskFromBits([]int{0, 1}),
			MaskFromBits([]int{48, 49}),
			{},
		},
		Flags:      []byte{FlagHidden, 0, FlagLocked},
		Titles:     []string{"凉宫春日", "阿虚的忧郁", "长门有希"},
		CoverBases: []string{"", "https://img.example.com/covers/"},
		CoverBaseIDs: []uint16{1, 1, 0},
		CoverPaths:   []string{"a.jpg", "b.jpg", ""},
		Authors:      []string{JoinField([]string{"谷川流"}, DefaultSepCode), "", "谷川流"},
		Aliases:      []string{"", JoinField([]string{"alias1", "alias2"}, DefaultSepCode), ""},
	}

	enc := EncodeMetaShard(src)
	got, err := DecodeMetaShard(enc)
	require.NoError(t, err)

	require.Equal(t, src.ExternalIDs, got.ExternalIDs)
	require.Equal(t, src.Tags, got.Tags)
	require.Equal(t, src.Flags, got.Flags)
	require.Equal(t, src.Titles, got.Titles)
	require.Equal(t, src.CoverBases, got.CoverBases)
	require.Equal(t, src.CoverBaseIDs, got.CoverBaseIDs)
	require.Equal(t, src.CoverPaths, got.CoverPaths)
	require.Equal(t, src.Authors, got.Authors)
	require.Equal(t, src.Aliases, got.Aliases)

	require.Equal(t, []string{"alias1", "alias2"}, SplitField(got.Aliases[1], DefaultSepCode))
}

func TestMetaShardManyCoverBases(t *testing.T) {
	const n = 300
	bases := make([]string, n)
	ids := make([]uint16, 2)
	for i := range bases {
		bases[i] = string(rune('a' + i%26))
	}
	ids[0] = 0
	ids[1] = uint16(n - 1)

	src := &MetaShard{
		ExternalIDs:  []int32{1, 2},
		Tags:         []TagBitset{{}, {}},
		Flags:        []byte{0, 0},
		Titles:       []string{"x", "y"},
		CoverBases:   bases,
		CoverBaseIDs: ids,
		CoverPaths:   []string{"p1", "p2"},
		Authors:      []string{"", ""},
		Aliases:      []string{"", ""},
	}

	enc := EncodeMetaShard(src)
	got, err := DecodeMetaShard(enc)
	require.NoError(t, err)
	require.Equal(t, ids, got.CoverBaseIDs)
	require.Len(t, got.CoverBases, n)
}

func TestDecodeMetaShardBadMagic(t *testing.T) {
	_, err := DecodeMetaShard([]byte("not a meta shard at all"))
	require.Error(t, err)
}
