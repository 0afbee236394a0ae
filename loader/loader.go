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

// Package loader implements the runtime artifact loader: it turns a
// manifest.json plus a Fetcher into fully decoded, ready-to-query artifacts,
// fetching the mandatory set up front and index shards on demand.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/pkg/errors"

	zmh "github.com/zhongfly/zmh-search"
	"github.com/zhongfly/zmh-search/cache"
)

// ConnectionHint describes the caller's network conditions, used to decide
// whether background preloading of index shards is worth the bandwidth.
type ConnectionHint struct {
	Slow      bool
	DataSaver bool
}

// Loader fetches and caches the artifact set described by a manifest.
// Safe for concurrent use: the mandatory artifacts are loaded once by Init
// and never mutated afterwards; index shards are protected by a mutex and
// loaded at most once each via a singleflight.Group.
type Loader struct {
	fetcher Fetcher
	store   *cache.Store
	logger  *zap.Logger

	manifest *zmh.Manifest
	tags     []zmh.Tag
	dict     *zmh.Dict

	mu          sync.RWMutex
	metaShards  [][]byte
	indexShards map[int][]byte

	sf   singleflight.Group
	sema *semaphore.Weighted
}

// New builds a Loader. store may be nil to disable the local cache.
func New(fetcher Fetcher, store *cache.Store, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		indexShards: make(map[int][]byte),
		sema:        semaphore.NewWeighted(2),
	}
}

// Init fetches manifest.json uncached, then fetches and decodes tags, the
// dictionary, and every meta shard in parallel. Index shards are left for
// EnsureIndexForTokens to fetch lazily. Returns once every mandatory
// artifact is in memory, or the first error encountered.
func (l *Loader) Init(ctx context.Context) error {
	manifestBytes, err := l.fetcher.Fetch(ctx, "manifest.json")
	if err != nil {
		return errors.Wrap(err, "comicidx: fetch manifest")
	}
	manifest, err := zmh.DecodeManifest(manifestBytes)
	if err != nil {
		return errors.Wrap(err, "comicidx: decode manifest")
	}
	l.manifest = manifest

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := l.fetchArtifact(ctx, manifest.Assets.Tags)
		if err != nil {
			return errors.Wrap(err, "comicidx: fetch tags")
		}
		tags, err := zmh.DecodeTagsFile(b)
		if err != nil {
			return errors.Wrap(err, "comicidx: decode tags")
		}
		l.tags = tags
		return nil
	})

	g.Go(func() error {
		b, err := l.fetchArtifact(ctx, manifest.Assets.Dict)
		if err != nil {
			return errors.Wrap(err, "comicidx: fetch dict")
		}
		dict, err := zmh.DecodeDict(b)
		if err != nil {
			return errors.Wrap(err, "comicidx: decode dict")
		}
		l.dict = dict
		return nil
	})

	metaShards := make([][]byte, len(manifest.Assets.MetaShards))
	for i, asset := range manifest.Assets.MetaShards {
		i, asset := i, asset
		g.Go(func() error {
			b, err := l.fetchArtifact(ctx, asset)
			if err != nil {
				return errors.Wrapf(err, "comicidx: fetch meta shard %d", i)
			}
			metaShards[i] = b
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	l.metaShards = metaShards

	l.logger.Info("loader init complete",
		zap.Int("docCount", manifest.Stats.Count),
		zap.Int("metaShards", len(metaShards)),
		zap.Int("indexShards", manifest.Stats.IndexShardCount),
	)

	go l.prune()

	return nil
}

// Manifest returns the decoded manifest. Only valid after Init succeeds.
func (l *Loader) Manifest() *zmh.Manifest { return l.manifest }

// Tags returns the decoded tag catalog.
func (l *Loader) Tags() []zmh.Tag { return l.tags }

// Dict returns the decoded token dictionary.
func (l *Loader) Dict() *zmh.Dict { return l.dict }

// MetaShard returns the raw bytes of meta shard id.
func (l *Loader) MetaShard(id int) []byte { return l.metaShards[id] }

// IndexShard returns the raw bytes of index shard id, if it has already
// been loaded by EnsureIndexForTokens.
func (l *Loader) IndexShard(id int) ([]byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.indexShards[id]
	return b, ok
}

// EnsureIndexForTokens fetches every index shard in shardIDs that is not
// already cached in memory, deduplicating concurrent requests for the same
// shard via singleflight so a burst of terms hashing to one shard triggers
// exactly one fetch.
func (l *Loader) EnsureIndexForTokens(ctx context.Context, shardIDs []int) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range shardIDs {
		id := id
		if _, ok := l.IndexShard(id); ok {
			continue
		}
		g.Go(func() error {
			return l.loadIndexShard(ctx, id)
		})
	}
	return g.Wait()
}

func (l *Loader) loadIndexShard(ctx context.Context, id int) error {
	key := fmt.Sprintf("shard-%d", id)
	_, err, _ := l.sf.Do(key, func() (interface{}, error) {
		if _, ok := l.IndexShard(id); ok {
			return nil, nil
		}
		if id < 0 || id >= len(l.manifest.Assets.IndexShards) {
			return nil, errors.Errorf("comicidx: index shard %d out of range", id)
		}
		asset := l.manifest.Assets.IndexShards[id]
		b, err := l.fetchArtifact(ctx, asset)
		if err != nil {
			return nil, errors.Wrapf(err, "comicidx: fetch index shard %d", id)
		}
		l.mu.Lock()
		l.indexShards[id] = b
		l.mu.Unlock()
		return nil, nil
	})
	return err
}

// Preload opportunistically warms every index shard in the background,
// bounded to two concurrent fetches, skipping entirely when the caller
// reports a slow connection or an active data-saver mode.
func (l *Loader) Preload(ctx context.Context, hint ConnectionHint) {
	if hint.Slow || hint.DataSaver {
		l.logger.Debug("preload skipped", zap.Bool("slow", hint.Slow), zap.Bool("dataSaver", hint.DataSaver))
		return
	}
	for id := range l.manifest.Assets.IndexShards {
		id := id
		if _, ok := l.IndexShard(id); ok {
			continue
		}
		if err := l.sema.Acquire(ctx, 1); err != nil {
			return
		}
		go func() {
			defer l.sema.Release(1)
			if err := l.loadIndexShard(ctx, id); err != nil {
				l.logger.Debug("preload shard failed", zap.Int("shard", id), zap.Error(err))
			}
		}()
	}
}

// fetchArtifact serves asset.Path from the local cache when its hash
// matches, otherwise fetches over the network and writes the result back
// to cache for next time.
func (l *Loader) fetchArtifact(ctx context.Context, asset zmh.AssetInfo) ([]byte, error) {
	if l.store != nil {
		if b, ok := l.store.Get(asset.SHA256); ok {
			return b, nil
		}
	}
	b, err := l.fetcher.Fetch(ctx, asset.Path)
	if err != nil {
		return nil, err
	}
	if asset.Bytes != 0 && int64(len(b)) != asset.Bytes {
		return nil, errors.Errorf("comicidx: size mismatch for %s: want %d bytes, got %d", asset.Path, asset.Bytes, len(b))
	}
	if got := sha256hex(b); got != asset.SHA256 {
		return nil, errors.Errorf("comicidx: hash mismatch for %s: want %s got %s", asset.Path, asset.SHA256, got)
	}
	if l.store != nil {
		l.store.Put(asset.SHA256, b)
	}
	return b, nil
}

func sha256hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// prune removes every cached entry not referenced by the current manifest.
func (l *Loader) prune() {
	if l.store == nil {
		return
	}
	keep := make(map[string]struct{})
	for _, a := range l.manifest.AllAssets() {
		keep[a.SHA256] = struct{}{}
	}
	l.store.Prune(keep)
}
