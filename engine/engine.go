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

// Package engine runs a resolved query plan against the loaded artifact
// set: it intersects posting lists, applies tag/status filters, scores and
// sorts candidates, and paginates the result.
package engine

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	zmh "github.com/zhongfly/zmh-search"
	"github.com/zhongfly/zmh-search/normalize"
	"github.com/zhongfly/zmh-search/query"
)

// ShardSource is the subset of loader.Loader the engine needs: make sure
// the tokens' shards are resident, then hand back their bytes. Declared
// here rather than imported so the engine can be exercised with a fake in
// tests without depending on the loader's network/cache machinery.
type ShardSource interface {
	EnsureIndexForTokens(ctx context.Context, shardIDs []int) error
	IndexShard(id int) ([]byte, bool)
}

// Result is one page of a resolved search.
type Result struct {
	// RequestID correlates this result with the progress messages and log
	// lines emitted while it was being computed.
	RequestID string
	DocIDs    []int
	Total     int
	HasMore   bool
}

// Engine holds the flattened, decoded corpus plus a single result-cache
// slot. All fields besides the cache are read-only after New, so Search
// needs no locking around them; only the cache slot is mutex-guarded.
type Engine struct {
	dict   *zmh.Dict
	shards ShardSource
	logger *zap.Logger

	// docs is the whole corpus indexed by internal doc-id; the *Norm slices
	// are the pre-normalized searchable text for the ranker's full-text
	// bonus checks, parallel to docs.
	docs        []zmh.Document
	titlesNorm  []string
	aliasesNorm []string
	authorsNorm []string

	mu          sync.Mutex
	cacheKey    string
	cacheDocIDs []int
}

// New flattens metaShards (in shard order, which is doc-id order) into a
// single corpus and wires dict lookups to shards for posting decode.
func New(metaShards []*zmh.MetaShard, dict *zmh.Dict, shards ShardSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{dict: dict, shards: shards, logger: logger}
	for _, ms := range metaShards {
		e.docs = append(e.docs, ms.Documents()...)
	}
	for i := range e.docs {
		d := &e.docs[i]
		e.titlesNorm = append(e.titlesNorm, normalize.Normalize(d.Title))
		e.aliasesNorm = append(e.aliasesNorm, normalize.Normalize(d.AliasesJoined()))
		e.authorsNorm = append(e.authorsNorm, normalize.Normalize(d.AuthorsJoined()))
	}
	return e
}

// Count returns the total number of documents in the corpus.
func (e *Engine) Count() int { return len(e.docs) }

// Document returns internal doc-id i's record.
func (e *Engine) Document(i int) *zmh.Document { return &e.docs[i] }

// ExternalID returns the external id of internal doc-id i.
func (e *Engine) ExternalID(i int) int32 { return e.docs[i].ID }

// termTokens resolves one already-normalized term to its kept dict entries
// (those whose bigram key was actually found) and the coverage threshold
// for the term's bigram count.
type termTokens struct {
	entries []zmh.DictEntry
	minHit  int
}

func (e *Engine) resolveTerm(term string) termTokens {
	keys := zmh.NgramKeys(term)
	k := len(keys)
	if k == 0 {
		return termTokens{}
	}
	entries := make([]zmh.DictEntry, 0, k)
	for _, key := range keys {
		if idx, ok := e.dict.Lookup(key); ok {
			entries = append(entries, e.dict.Entries[idx])
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DF < entries[j].DF })
	minHit := int(math.Ceil(float64(k) * 0.6))
	if minHit < 1 {
		minHit = 1
	}
	if minHit > k {
		minHit = k
	}
	return termTokens{entries: entries, minHit: minHit}
}

func requiredShards(terms []termTokens) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, t := range terms {
		for _, e := range t.entries {
			id := int(e.ShardID)
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// passFilters reports whether doc passes the plan's tag and status
// filters, independent of term matching.
func (e *Engine) passFilters(doc int, plan *query.Plan) bool {
	d := &e.docs[doc]
	if !d.Tags.ContainsAll(plan.SelectedMask) || !d.Tags.ContainsNone(plan.ExcludedMask) {
		return false
	}
	return plan.Status.Pass(d)
}

// matchTerm decodes each of a term's kept tokens' postings in df-ascending
// order, counting hits per doc while skipping docs already excluded or
// filtered out, and keeps docs whose hit count reaches minHit. Returns hit
// counts only for docs that matched.
func (e *Engine) matchTerm(t termTokens, exclude *roaring.Bitmap, plan *query.Plan) map[int]int {
	if len(t.entries) == 0 {
		return nil
	}
	hits := map[int]int{}
	for _, entry := range t.entries {
		shardBytes, ok := e.shards.IndexShard(int(entry.ShardID))
		if !ok {
			continue
		}
		postings := shardBytes[entry.Offset : entry.Offset+uint32(entry.Length)]
		_ = zmh.DecodePostings(postings, func(docID uint32) bool {
			d := int(docID)
			if exclude != nil && exclude.Contains(docID) {
				return true
			}
			if plan != nil && !e.passFilters(d, plan) {
				return true
			}
			hits[d]++
			return true
		})
	}
	matched := make(map[int]int, len(hits))
	for doc, c := range hits {
		if c >= t.minHit {
			matched[doc] = c
		}
	}
	return matched
}

// buildExcludeMask resolves plan.ExcludeTerms into a bitmap of doc-ids that
// match any exclude term, using the same coverage rule as inclusion.
func (e *Engine) buildExcludeMask(plan *query.Plan) *roaring.Bitmap {
	mask := roaring.New()
	for _, term := range plan.ExcludeTerms {
		t := e.resolveTerm(term)
		for doc := range e.matchTerm(t, nil, nil) {
			mask.Add(uint32(doc))
		}
	}
	return mask
}

// Search resolves plan against the loaded corpus and returns one page of
// results. The full matched, sorted doc-id sequence for plan is cached in
// a single slot so subsequent pages of the same query skip re-evaluation.
func (e *Engine) Search(ctx context.Context, plan *query.Plan) (*Result, error) {
	docIDs, err := e.resolved(ctx, plan)
	if err != nil {
		return nil, err
	}
	return paginate(docIDs, plan.Page, plan.Size), nil
}

func (e *Engine) resolved(ctx context.Context, plan *query.Plan) ([]int, error) {
	e.mu.Lock()
	if e.cacheKey == plan.ResolveKey {
		docIDs := e.cacheDocIDs
		e.mu.Unlock()
		return docIDs, nil
	}
	e.mu.Unlock()

	docIDs, err := e.evaluate(ctx, plan)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cacheKey = plan.ResolveKey
	e.cacheDocIDs = docIDs
	e.mu.Unlock()

	return docIDs, nil
}

func (e *Engine) evaluate(ctx context.Context, plan *query.Plan) ([]int, error) {
	includeTerms := make([]termTokens, len(plan.IncludeTerms))
	for i, term := range plan.IncludeTerms {
		includeTerms[i] = e.resolveTerm(term)
	}
	excludeTerms := make([]termTokens, len(plan.ExcludeTerms))
	for i, term := range plan.ExcludeTerms {
		excludeTerms[i] = e.resolveTerm(term)
	}

	shardIDs := requiredShards(includeTerms)
	shardIDs = append(shardIDs, requiredShards(excludeTerms)...)
	if len(shardIDs) > 0 {
		if err := e.shards.EnsureIndexForTokens(ctx, shardIDs); err != nil {
			return nil, errors.Wrap(err, "comicidx: load index shards")
		}
	}

	exclude := e.buildExcludeMask(plan)

	if len(plan.IncludeTerms) == 0 {
		if !plan.HasFilters() {
			return nil, nil
		}
		var docIDs []int
		for doc := 0; doc < e.Count(); doc++ {
			if exclude.Contains(uint32(doc)) {
				continue
			}
			if e.passFilters(doc, plan) {
				docIDs = append(docIDs, doc)
			}
		}
		return e.sortDocIDs(docIDs, nil, plan), nil
	}

	var candidates map[int]int
	scores := map[int]float64{}
	for i, t := range includeTerms {
		matched := e.matchTerm(t, exclude, plan)
		if i == 0 {
			candidates = matched
		} else {
			for doc := range candidates {
				if _, ok := matched[doc]; !ok {
					delete(candidates, doc)
				}
			}
		}
		k := len(zmh.NgramKeys(plan.IncludeTerms[i]))
		if k == 0 {
			continue
		}
		for doc, hits := range matched {
			scores[doc] += float64(hits) / float64(k)
		}
	}

	docIDs := make([]int, 0, len(candidates))
	for doc := range candidates {
		docIDs = append(docIDs, doc)
	}

	return e.sortDocIDs(docIDs, scores, plan), nil
}

// fullTextBonus adds the relevance bonuses from matching an include term
// against the document's normalized title/aliases/authors text.
func (e *Engine) fullTextBonus(doc int, terms []string) float64 {
	var bonus float64
	for _, term := range terms {
		if strings.Contains(e.titlesNorm[doc], term) {
			bonus += 1.4
		}
		if strings.Contains(e.aliasesNorm[doc], term) {
			bonus += 0.6
		}
		if strings.Contains(e.authorsNorm[doc], term) {
			bonus += 0.4
		}
	}
	return bonus
}

func (e *Engine) sortDocIDs(docIDs []int, baseScores map[int]float64, plan *query.Plan) []int {
	switch plan.Sort {
	case query.SortIDAsc:
		sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })
		return docIDs
	case query.SortIDDesc:
		sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] > docIDs[j] })
		return docIDs
	default:
		scores := make(map[int]float64, len(docIDs))
		for _, doc := range docIDs {
			s := float64(0)
			if baseScores != nil {
				s = baseScores[doc]
			}
			if len(plan.IncludeTerms) > 0 {
				s += e.fullTextBonus(doc, plan.IncludeTerms)
			}
			scores[doc] = s
		}
		sort.Slice(docIDs, func(i, j int) bool {
			a, b := docIDs[i], docIDs[j]
			if scores[a] != scores[b] {
				return scores[a] > scores[b]
			}
			return e.docs[a].ID > e.docs[b].ID
		})
		return docIDs
	}
}

func paginate(docIDs []int, page, size int) *Result {
	total := len(docIDs)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	pageSlice := append([]int(nil), docIDs[start:end]...)
	return &Result{DocIDs: pageSlice, Total: total, HasMore: end < total}
}
