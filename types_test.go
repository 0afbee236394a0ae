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

func TestDocumentFlagAccessors(t *testing.T) {
	d := Document{Flags: FlagHidden | FlagNeedLogin}
	require.True(t, d.Hidden())
	require.False(t, d.ChapterHidden())
	require.True(t, d.NeedLogin())
	require.False(t, d.Locked())
}

func TestDocumentSearchableFields(t *testing.T) {
	d := Document{
		Title:   "凉宫春日的忧郁",
		Aliases: []string{"涼宮ハルヒの憂鬱", "The Melancholy of Haruhi"},
		Authors: []string{"谷川流"},
	}
	require.Equal(t,
		[]string{"凉宫春日的忧郁", "涼宮ハルヒの憂鬱", "The Melancholy of Haruhi", "谷川流"},
		d.SearchableFields())
}

func TestDocumentJoinedFields(t *testing.T) {
	d := Document{
		Aliases: []string{"a1", "a2"},
		Authors: []string{"author"},
	}
	require.Equal(t, "a1 a2", d.AliasesJoined())
	require.Equal(t, "author", d.AuthorsJoined())

	var empty Document
	require.Equal(t, "", empty.AliasesJoined())
	require.Equal(t, "", empty.AuthorsJoined())
}

func TestDocumentCoverURL(t *testing.T) {
	d := Document{CoverBase: "https://cdn.example.com/covers/a/", CoverPath: "3.jpg?token=abc"}
	require.Equal(t, "https://cdn.example.com/covers/a/3.jpg?token=abc", d.CoverURL())
}
