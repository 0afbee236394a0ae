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

// Package query turns a raw search box string plus the UI's tag/status
// filter selections into an immutable, cacheable Plan that the evaluator
// and ranker execute against.
package query

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zhongfly/zmh-search/normalize"

	zmh "github.com/zhongfly/zmh-search"
)

// A term is excluded when it leads with a plain ASCII hyphen or its
// fullwidth counterpart, since most of the catalog's users type on IME
// keyboards that default to fullwidth punctuation.
const fullwidthHyphen = '－'

// minTermRunes is the shortest normalized term the planner will keep; a
// single CJK character or Latin letter is too common to usefully narrow a
// bigram search.
const minTermRunes = 2

// SortMode selects how the ranker orders candidates.
type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortIDDesc    SortMode = "id_desc"
	SortIDAsc     SortMode = "id_asc"
)

// TriState is a three-way status filter: show regardless, only docs with
// the bit clear, or only docs with the bit set.
type TriState int

const (
	StatusAny TriState = iota
	StatusOnly0
	StatusOnly1
)

func (t TriState) String() string {
	switch t {
	case StatusOnly0:
		return "0"
	case StatusOnly1:
		return "1"
	default:
		return "*"
	}
}

// StatusFilters is the tri-state filter set over the four status bits.
type StatusFilters struct {
	Hidden        TriState
	ChapterHidden TriState
	NeedLogin     TriState
	Locked        TriState
}

// Identity reports whether every filter is StatusAny, i.e. contributes no
// constraint.
func (f StatusFilters) Identity() bool {
	return f.Hidden == StatusAny && f.ChapterHidden == StatusAny && f.NeedLogin == StatusAny && f.Locked == StatusAny
}

// Pass reports whether d's status bits satisfy every filter in f.
func (f StatusFilters) Pass(d *zmh.Document) bool {
	return passBit(f.Hidden, d.Hidden()) &&
		passBit(f.ChapterHidden, d.ChapterHidden()) &&
		passBit(f.NeedLogin, d.NeedLogin()) &&
		passBit(f.Locked, d.Locked())
}

func passBit(t TriState, set bool) bool {
	switch t {
	case StatusOnly0:
		return !set
	case StatusOnly1:
		return set
	default:
		return true
	}
}

// Plan is the fully resolved, order-independent description of one search:
// everything the evaluator and ranker need, plus a canonical string that
// uniquely identifies it for the result cache.
type Plan struct {
	IncludeTerms []string
	ExcludeTerms []string

	SelectedMask zmh.TagBitset
	ExcludedMask zmh.TagBitset

	Status StatusFilters

	Sort SortMode
	Page int
	Size int

	// CacheKey identifies the full plan, pagination included. ResolveKey
	// omits page and size: two plans with equal ResolveKeys resolve to the
	// same doc-id vector, so the result cache is keyed on it and paging
	// through a query reuses the cached vector.
	CacheKey   string
	ResolveKey string
}

// HasFilters reports whether the tag or status filters narrow the corpus at
// all, independent of include/exclude terms.
func (p *Plan) HasFilters() bool {
	return !p.SelectedMask.IsZero() || !p.ExcludedMask.IsZero() || !p.Status.Identity()
}

// Params is the raw input to Parse: the search box string plus the UI's
// resolved filter/sort/pagination selections.
type Params struct {
	Query        string
	SelectedBits []int
	ExcludedBits []int
	Status       StatusFilters
	Sort         SortMode
	Page         int
	Size         int
}

// Parse builds a Plan from Params. Page defaults to 1 and Size to 20 when
// non-positive; Sort defaults to SortRelevance when empty.
func Parse(p Params) *Plan {
	include, exclude := splitTerms(p.Query)

	sortMode := p.Sort
	if sortMode == "" {
		sortMode = SortRelevance
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.Size
	if size < 1 {
		size = 20
	}

	plan := &Plan{
		IncludeTerms: include,
		ExcludeTerms: exclude,
		SelectedMask: zmh.MaskFromBits(p.SelectedBits),
		ExcludedMask: zmh.MaskFromBits(p.ExcludedBits),
		Status:       p.Status,
		Sort:         sortMode,
		Page:         page,
		Size:         size,
	}
	plan.ResolveKey = resolveKey(plan)
	plan.CacheKey = fmt.Sprintf("%s|pg=%d|sz=%d", plan.ResolveKey, plan.Page, plan.Size)
	return plan
}

// splitTerms implements the query syntax: whitespace-split terms, a leading
// '-' or fullwidth hyphen marks exclusion, each term body is normalized and
// discarded if too short, and a term present in both lists is kept only as
// an exclusion.
func splitTerms(raw string) (include, exclude []string) {
	includeSet := map[string]struct{}{}
	excludeSet := map[string]struct{}{}

	for _, field := range strings.Fields(raw) {
		excluded := false
		r, size := utf8.DecodeRuneInString(field)
		if r == '-' || r == fullwidthHyphen {
			excluded = true
			field = field[size:]
		}

		term := normalize.Normalize(field)
		if utf8.RuneCountInString(term) < minTermRunes {
			continue
		}

		if excluded {
			excludeSet[term] = struct{}{}
		} else {
			includeSet[term] = struct{}{}
		}
	}

	// Exclusion dominance: a term present in both lists is treated only as
	// an exclude.
	for t := range excludeSet {
		delete(includeSet, t)
	}

	include = setToSortedSlice(includeSet)
	exclude = setToSortedSlice(excludeSet)
	return include, exclude
}

func setToSortedSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// resolveKey builds the canonical string identifying everything that shapes
// the resolved doc-id vector: any change to any of these fields changes the
// key, and two Params that normalize to the same Plan produce byte-identical
// keys regardless of input term order.
func resolveKey(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "in=%s|ex=%s|sel=%08x%08x|exm=%08x%08x|st=%s%s%s%s|sort=%s",
		strings.Join(p.IncludeTerms, ","),
		strings.Join(p.ExcludeTerms, ","),
		p.SelectedMask.Hi, p.SelectedMask.Lo,
		p.ExcludedMask.Hi, p.ExcludedMask.Lo,
		p.Status.Hidden, p.Status.ChapterHidden, p.Status.NeedLogin, p.Status.Locked,
		p.Sort,
	)
	return b.String()
}
