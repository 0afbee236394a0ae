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

package loader

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	zmh "github.com/zhongfly/zmh-search"
)

type fakeFetcher struct {
	mu      sync.Mutex
	files   map[string][]byte
	fetches map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{files: map[string][]byte{}, fetches: map[string]int{}}
}

func (f *fakeFetcher) set(path string, b []byte) {
	f.files[path] = b
}

func (f *fakeFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	f.fetches[path]++
	f.mu.Unlock()
	b, ok := f.files[path]
	if !ok {
		return nil, errNotFound(path)
	}
	return b, nil
}

func (f *fakeFetcher) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[path]
}

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

func asset(path string, b []byte) zmh.AssetInfo {
	sum := sha256.Sum256(b)
	return zmh.AssetInfo{Path: path, SHA256: hex.EncodeToString(sum[:]), Bytes: int64(len(b))}
}

func buildTestManifest(fetcher *fakeFetcher, indexShards int) *zmh.Manifest {
	tags, _ := zmh.EncodeTagsFile(nil)
	dict := zmh.EncodeDict(nil)
	meta := zmh.EncodeMetaShard(&zmh.MetaShard{SepCode: zmh.DefaultSepCode, CoverBases: []string{""}})

	fetcher.set("tags.json", tags)
	fetcher.set("dict.bin", dict)
	fetcher.set("meta.0.bin", meta)

	m := &zmh.Manifest{
		Version: 1,
		Assets: zmh.ManifestAssets{
			Tags:       asset("tags.json", tags),
			Dict:       asset("dict.bin", dict),
			MetaShards: []zmh.AssetInfo{asset("meta.0.bin", meta)},
		},
	}
	for i := 0; i < indexShards; i++ {
		path := "index." + string(rune('0'+i)) + ".bin"
		body := []byte("shard-" + string(rune('0'+i)))
		fetcher.set(path, body)
		m.Assets.IndexShards = append(m.Assets.IndexShards, asset(path, body))
	}
	m.Stats.IndexShardCount = indexShards
	return m
}

func manifestBytes(t *testing.T, m *zmh.Manifest) []byte {
	t.Helper()
	b, err := m.Encode()
	require.NoError(t, err)
	return b
}

func TestLoaderInitFetchesMandatoryArtifacts(t *testing.T) {
	fetcher := newFakeFetcher()
	m := buildTestManifest(fetcher, 2)
	fetcher.set("manifest.json", manifestBytes(t, m))

	l := New(fetcher, nil, nil)
	require.NoError(t, l.Init(context.Background()))

	require.NotNil(t, l.Dict())
	require.NotNil(t, l.Tags())
	require.Equal(t, fetcher.files["meta.0.bin"], l.MetaShard(0))

	_, ok := l.IndexShard(0)
	require.False(t, ok)
}

func TestLoaderEnsureIndexForTokensFetchesOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	m := buildTestManifest(fetcher, 2)
	fetcher.set("manifest.json", manifestBytes(t, m))

	l := New(fetcher, nil, nil)
	require.NoError(t, l.Init(context.Background()))

	require.NoError(t, l.EnsureIndexForTokens(context.Background(), []int{0, 0, 1}))

	b0, ok := l.IndexShard(0)
	require.True(t, ok)
	require.Equal(t, fetcher.files["index.0.bin"], b0)

	b1, ok := l.IndexShard(1)
	require.True(t, ok)
	require.Equal(t, fetcher.files["index.1.bin"], b1)

	require.Equal(t, 1, fetcher.count("index.0.bin"))
	require.Equal(t, 1, fetcher.count("index.1.bin"))

	require.NoError(t, l.EnsureIndexForTokens(context.Background(), []int{0}))
	require.Equal(t, 1, fetcher.count("index.0.bin"))
}

func TestLoaderGzipInflate(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	out, err := maybeInflate(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), out)
}

func TestLoaderHashMismatchRejected(t *testing.T) {
	fetcher := newFakeFetcher()
	m := buildTestManifest(fetcher, 0)
	// Same length as the real 16-byte empty dict, so the size check passes
	// and the hash check is what rejects it.
	fetcher.set("dict.bin", []byte("tampered-bytes!!"))
	fetcher.set("manifest.json", manifestBytes(t, m))

	l := New(fetcher, nil, nil)
	err := l.Init(context.Background())
	require.Error(t, err)
}
