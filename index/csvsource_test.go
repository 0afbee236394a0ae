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

package index

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVSourceParsesRows(t *testing.T) {
	src := NewCSVSource(strings.NewReader(fixtureCSV))

	first, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, int32(3), first.ID)
	require.Equal(t, "凉宫春日的忧郁", first.Title)
	require.Equal(t, []string{"涼宮ハルヒの憂鬱"}, first.Aliases)
	require.Equal(t, []string{"谷川流"}, first.Authors)
	require.Equal(t, byte(0), first.Flags)
	require.Equal(t, []RowTag{{TagID: 1, Name: "sf"}, {TagID: 2, Name: "school"}}, first.Tags)

	second, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, int32(1), second.ID)
	require.Nil(t, second.Aliases)
	require.Equal(t, byte(1), second.Flags)

	_, err = src.Next()
	require.NoError(t, err)

	_, err = src.Next()
	require.Equal(t, io.EOF, err)
}
