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

import "encoding/json"

// AssetInfo is one entry of manifest.assets.
type AssetInfo struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// ManifestStats is manifest.stats.
type ManifestStats struct {
	Version         int    `json:"version"`
	Count           int    `json:"count"`
	UniqueTokens    int    `json:"uniqueTokens"`
	IndexBytes      int64  `json:"indexBytes"`
	MetaShardDocs   int    `json:"metaShardDocs"`
	MetaShardCount  int    `json:"metaShardCount"`
	IndexShardCount int    `json:"indexShardCount"`
	IndexShardMode  string `json:"indexShardMode"`
}

// ManifestAssets is manifest.assets.
type ManifestAssets struct {
	Tags        AssetInfo   `json:"tags"`
	Dict        AssetInfo   `json:"dict"`
	MetaShards  []AssetInfo `json:"metaShards"`
	IndexShards []AssetInfo `json:"indexShards"`
}

// Manifest is the decoded manifest.json.
type Manifest struct {
	Version     int            `json:"version"`
	GeneratedAt string         `json:"generatedAt"`
	Stats       ManifestStats  `json:"stats"`
	Assets      ManifestAssets `json:"assets"`
}

// Encode marshals the manifest as indented, human-diffable JSON.
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// DecodeManifest parses manifest.json.
func DecodeManifest(b []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// AllAssets returns every AssetInfo in the manifest, tags and dict first,
// then meta shards, then index shards — the order the loader fetches them
// in.
func (m *Manifest) AllAssets() []AssetInfo {
	out := make([]AssetInfo, 0, 2+len(m.Assets.MetaShards)+len(m.Assets.IndexShards))
	out = append(out, m.Assets.Tags, m.Assets.Dict)
	out = append(out, m.Assets.MetaShards...)
	out = append(out, m.Assets.IndexShards...)
	return out
}
