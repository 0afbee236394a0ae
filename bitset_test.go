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

func TestTagBitsetSetTest(t *testing.T) {
	var b TagBitset
	b.Set(0)
	b.Set(31)
	b.Set(32)
	b.Set(49)
	for _, bit := range []int{0, 31, 32, 49} {
		require.Truef(t, b.Test(bit), "bit %d should be set", bit)
	}
	for _, bit := range []int{1, 30, 33, 48} {
		require.Falsef(t, b.Test(bit), "bit %d should not be set", bit)
	}
}

func TestTagBitsetContainsAll(t *testing.T) {
	doc := MaskFromBits([]int{1, 2, 40})
	require.True(t, doc.ContainsAll(MaskFromBits([]int{1, 2})))
	require.False(t, doc.ContainsAll(MaskFromBits([]int{1, 3})))
}

func TestTagBitsetContainsNone(t *testing.T) {
	doc := MaskFromBits([]int{1, 2})
	require.True(t, doc.ContainsNone(MaskFromBits([]int{3, 4})))
	require.False(t, doc.ContainsNone(MaskFromBits([]int{2, 4})))
}

func TestUnionComposition(t *testing.T) {
	a := MaskFromBits([]int{1})
	b := MaskFromBits([]int{2})
	u := Union(a, b)
	require.True(t, u.Test(1))
	require.True(t, u.Test(2))
}
