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

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	zmh "github.com/zhongfly/zmh-search"
)

func TestSplitTermsExclusionPrefixesAndDedup(t *testing.T) {
	include, exclude := splitTerms("春日 -忧郁 谷川 －涼宮 谷川")
	require.Equal(t, []string{"春日", "谷川"}, include)
	require.Equal(t, []string{"忧郁", "涼宮"}, exclude)
}

func TestSplitTermsDiscardsShortTerms(t *testing.T) {
	include, exclude := splitTerms("a 春 ab 日本")
	require.Equal(t, []string{"ab", "日本"}, include)
	require.Empty(t, exclude)
}

func TestSplitTermsExclusionDominance(t *testing.T) {
	include, exclude := splitTerms("school -school")
	require.Empty(t, include)
	require.Equal(t, []string{"school"}, exclude)
}

func TestParseDefaults(t *testing.T) {
	plan := Parse(Params{Query: "hello"})
	require.Equal(t, SortRelevance, plan.Sort)
	require.Equal(t, 1, plan.Page)
	require.Equal(t, 20, plan.Size)
}

func TestParseCacheKeyStableUnderTermOrder(t *testing.T) {
	a := Parse(Params{Query: "alpha beta"})
	b := Parse(Params{Query: "beta alpha"})
	require.Equal(t, a.CacheKey, b.CacheKey)
}

func TestParseCacheKeyChangesWithFilters(t *testing.T) {
	base := Parse(Params{Query: "alpha"})
	withTag := Parse(Params{Query: "alpha", SelectedBits: []int{3}})
	require.NotEqual(t, base.CacheKey, withTag.CacheKey)
}

func TestStatusFiltersPass(t *testing.T) {
	f := StatusFilters{Hidden: StatusOnly0, Locked: StatusOnly1}
	require.True(t, f.Pass(&zmh.Document{Flags: zmh.FlagLocked}))
	require.False(t, f.Pass(&zmh.Document{Flags: zmh.FlagHidden | zmh.FlagLocked}))
	require.False(t, f.Pass(&zmh.Document{}))
}

func TestStatusFiltersIdentity(t *testing.T) {
	require.True(t, StatusFilters{}.Identity())
	require.False(t, StatusFilters{Hidden: StatusOnly1}.Identity())
}

func TestPlanHasFilters(t *testing.T) {
	p := Parse(Params{Query: "alpha"})
	require.False(t, p.HasFilters())

	p2 := Parse(Params{Query: "alpha", ExcludedBits: []int{1}})
	require.True(t, p2.HasFilters())
}
