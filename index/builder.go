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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	zmh "github.com/zhongfly/zmh-search"
	"github.com/zhongfly/zmh-search/normalize"
)

// defaultMetaShardDocs is used when Options.MetaShardDocs is left nil.
const defaultMetaShardDocs = 4096

// Options configures one builder run.
type Options struct {
	// MetaShardDocs is the number of documents per meta.bin shard. nil
	// leaves the decision to defaultMetaShardDocs; a pointer to 0 disables
	// sharding outright (every document lands in a single meta shard); a
	// pointer to a positive value pins that exact shard size. A plain int
	// can't distinguish "flag not passed" from "flag passed as zero", which
	// is why this is a pointer rather than an int with 0 meaning "default".
	MetaShardDocs *int

	// IndexShardCount is the number of posting-list shards. nil derives a
	// count from total postings bytes (see defaultIndexShardCount); a
	// pointer to 0 disables sharding (a single index shard); a pointer to a
	// positive value pins that exact count.
	IndexShardCount *int

	// GeneratedAt is stamped into manifest.json verbatim.
	GeneratedAt string

	// Logger receives build progress and warnings. Defaults to a no-op
	// logger.
	Logger *zap.Logger
}

// Artifacts is the full in-memory output of a build: every artifact byte
// slice plus the manifest describing them. WriteArtifacts persists these to
// a directory; callers that only need round-trip verification can decode
// straight from here without touching disk.
type Artifacts struct {
	Manifest    *zmh.Manifest
	Tags        []byte
	Dict        []byte
	MetaShards  [][]byte
	IndexShards [][]byte
}

// Build reads every row from src, then runs the builder algorithm: assign
// doc-ids by sorted external id, assign tag bits, split cover URLs,
// invert n-grams into posting lists, shard the postings and the documents,
// and hash every emitted artifact into the manifest.
func Build(src RowSource, opts Options) (*Artifacts, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rows, err := collectRows(src)
	if err != nil {
		return nil, errors.Wrap(err, "comicidx: collect rows")
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	tags, bitByTagID := assignTagBits(rows)
	if dropped := countDroppedTags(tags); dropped > 0 {
		logger.Warn("tags dropped beyond bit slot limit", zap.Int("dropped", dropped), zap.Int("limit", zmh.MaxTags))
	}

	docs := make([]zmh.Document, len(rows))
	for i, r := range rows {
		var bs zmh.TagBitset
		for _, t := range r.Tags {
			if bit := bitByTagID[t.TagID]; bit != zmh.NoBit {
				bs.Set(bit)
			}
		}
		base, suffix := splitCoverURL(r.Cover)
		docs[i] = zmh.Document{
			ID:        r.ID,
			Title:     r.Title,
			Aliases:   r.Aliases,
			Authors:   r.Authors,
			CoverBase: base,
			CoverPath: suffix,
			Tags:      bs,
			Flags:     r.Flags,
		}
	}

	postings := invertNgrams(docs)
	keys := make([]uint32, 0, len(postings))
	for k := range postings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	encoded := make(map[uint32][]byte, len(keys))
	totalPostingBytes := 0
	for _, k := range keys {
		b := zmh.DeltaEncodePostings(postings[k])
		encoded[k] = b
		totalPostingBytes += len(b)
	}

	shardCount := defaultIndexShardCount(totalPostingBytes)
	shardMode := "bytes-1mib-pow2"
	switch {
	case opts.IndexShardCount == nil:
		// use the size-based default computed above
	case *opts.IndexShardCount == 0:
		shardCount = 1 // disable sharding
		shardMode = "fixed"
	case *opts.IndexShardCount > 0:
		shardCount = *opts.IndexShardCount
		shardMode = "fixed"
	}
	if shardCount > maxIndexShards {
		return nil, errors.Errorf("comicidx: index shard count %d exceeds the dict's u8 shard id limit of %d", shardCount, maxIndexShards)
	}

	shardBufs := make([][]byte, shardCount)
	dictEntries := make([]zmh.DictEntry, len(keys))
	for i, k := range keys {
		s := tokenShard(k, shardCount)
		b := encoded[k]
		off := len(shardBufs[s])
		shardBufs[s] = append(shardBufs[s], b...)
		df := len(postings[k])
		if df > 0xFFFF {
			// dict.bin's df column is a u16; the exact value only drives the
			// evaluator's decode order, so saturating is harmless.
			df = 0xFFFF
		}
		dictEntries[i] = zmh.DictEntry{
			Key:     k,
			ShardID: uint8(s),
			Offset:  uint32(off),
			Length:  uint16(len(b)),
			DF:      uint16(df),
		}
	}

	dictBytes := zmh.EncodeDict(dictEntries)
	tagsBytes, err := zmh.EncodeTagsFile(tags)
	if err != nil {
		return nil, errors.Wrap(err, "comicidx: encode tags.json")
	}

	metaShardDocs := defaultMetaShardDocs
	switch {
	case opts.MetaShardDocs == nil:
		// use defaultMetaShardDocs set above
	case *opts.MetaShardDocs == 0:
		metaShardDocs = len(rows) // disable sharding: one meta shard for the whole corpus
		if metaShardDocs == 0 {
			metaShardDocs = 1 // buildMetaShards special-cases the empty corpus anyway
		}
	case *opts.MetaShardDocs > 0:
		metaShardDocs = *opts.MetaShardDocs
	}
	metaShards := buildMetaShards(docs, metaShardDocs)

	manifest := &zmh.Manifest{
		Version:     1,
		GeneratedAt: opts.GeneratedAt,
		Stats: zmh.ManifestStats{
			Version:         1,
			Count:           len(rows),
			UniqueTokens:    len(keys),
			IndexBytes:      int64(totalPostingBytes),
			MetaShardDocs:   metaShardDocs,
			MetaShardCount:  len(metaShards),
			IndexShardCount: shardCount,
			IndexShardMode:  shardMode,
		},
	}
	manifest.Assets.Tags = hashedAsset("tags.json", tagsBytes)
	manifest.Assets.Dict = hashedAsset("dict.bin", dictBytes)
	for i, b := range metaShards {
		manifest.Assets.MetaShards = append(manifest.Assets.MetaShards, hashedAsset(fmt.Sprintf("meta.%d.bin", i), b))
	}
	for i, b := range shardBufs {
		manifest.Assets.IndexShards = append(manifest.Assets.IndexShards, hashedAsset(fmt.Sprintf("index.%d.bin", i), b))
	}

	logger.Info("build complete",
		zap.Int("docs", len(rows)),
		zap.Int("uniqueTokens", len(keys)),
		zap.Int("metaShards", len(metaShards)),
		zap.Int("indexShards", shardCount),
		zap.String("indexBytes", humanize.Bytes(uint64(totalPostingBytes))),
	)

	return &Artifacts{
		Manifest:    manifest,
		Tags:        tagsBytes,
		Dict:        dictBytes,
		MetaShards:  metaShards,
		IndexShards: shardBufs,
	}, nil
}

func collectRows(src RowSource) ([]*Row, error) {
	var rows []*Row
	for {
		r, err := src.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
}

// assignTagBits computes per-tag document counts across rows and hands them
// to zmh.AssignBits, returning the resulting tag table and a lookup from
// tagId to its assigned bit (zmh.NoBit if dropped).
func assignTagBits(rows []*Row) ([]zmh.Tag, map[uint16]int) {
	byID := map[uint16]*zmh.Tag{}
	for _, r := range rows {
		for _, t := range r.Tags {
			tg, ok := byID[t.TagID]
			if !ok {
				tg = &zmh.Tag{TagID: t.TagID, Name: t.Name}
				byID[t.TagID] = tg
			}
			tg.Count++
		}
	}
	tags := make([]zmh.Tag, 0, len(byID))
	for _, t := range byID {
		tags = append(tags, *t)
	}
	tags = zmh.AssignBits(tags)

	bitByTagID := make(map[uint16]int, len(tags))
	for _, t := range tags {
		bitByTagID[t.TagID] = t.Bit
	}
	return tags, bitByTagID
}

func countDroppedTags(tags []zmh.Tag) int {
	n := 0
	for _, t := range tags {
		if t.Bit == zmh.NoBit {
			n++
		}
	}
	return n
}

// invertNgrams builds the token -> posting list map. Documents are walked in
// doc-id order (the slice's own index), so every posting list comes out
// already sorted ascending with no separate sort pass.
func invertNgrams(docs []zmh.Document) map[uint32][]uint32 {
	postings := map[uint32][]uint32{}
	for docID := range docs {
		seen := map[uint32]struct{}{}
		for _, field := range docs[docID].SearchableFields() {
			for k := range normalize.NgramSet(field) {
				seen[k] = struct{}{}
			}
		}
		for k := range seen {
			postings[k] = append(postings[k], uint32(docID))
		}
	}
	return postings
}

func hashedAsset(path string, data []byte) zmh.AssetInfo {
	sum := sha256.Sum256(data)
	return zmh.AssetInfo{Path: path, SHA256: hex.EncodeToString(sum[:]), Bytes: int64(len(data))}
}
