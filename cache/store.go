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

// Package cache implements the local content-addressed artifact store: a
// single-file BoltDB keyed by hex SHA-256, one writer at a time with
// unlimited concurrent readers, courtesy of bbolt's own MVCC transactions.
package cache

import (
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/pkg/errors"
)

var bucketArtifacts = []byte("artifacts")

// Store is a persistent byte-blob cache keyed by content hash.
type Store struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Open opens (creating if absent) the BoltDB file at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: open cache %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketArtifacts)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "comicidx: init cache bucket")
	}
	return &Store{db: db, logger: logger}, nil
}

// Get returns the cached bytes for hash, if present. The returned slice is
// a copy safe to retain past the bbolt transaction.
func (s *Store) Get(hash string) ([]byte, bool) {
	var out []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketArtifacts).Get([]byte(hash)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, out != nil
}

// Put writes value under hash. Writes are fire-and-forget: a failure is
// logged and swallowed, since a cache miss is always safe — the loader
// just re-fetches over the network next time.
func (s *Store) Put(hash string, value []byte) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketArtifacts).Put([]byte(hash), value)
	})
	if err != nil {
		s.logger.Warn("cache write failed", zap.String("hash", hash), zap.Error(err))
	}
}

// Prune deletes every cached entry whose key is not in keep. Best-effort:
// called once the loader announces ready, after manifest.assets is known;
// failure never affects correctness, only disk usage.
func (s *Store) Prune(keep map[string]struct{}) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArtifacts)
		c := b.Cursor()

		var stale [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if _, ok := keep[string(k)]; !ok {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("cache prune failed", zap.Error(err))
	}
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}
