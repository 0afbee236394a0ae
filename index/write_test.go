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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteArtifactsCleanRemovesOnlyRecognizedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("stale"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.0.bin"), []byte("stale"), 0o644))
	keep := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(keep, []byte("keep me"), 0o644))

	art := buildFixture(t, Options{})
	require.NoError(t, WriteArtifacts(dir, art, true))

	_, err := os.Stat(keep)
	require.NoError(t, err)

	manifestBytes, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(manifestBytes), `"version"`))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Contains(t, names, "tags.json")
	require.Contains(t, names, "dict.bin")
	require.Contains(t, names, "README.md")
}
