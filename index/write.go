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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// recognizedPrefixes lists the artifact filename prefixes --clean is
// allowed to remove. Anything else in the output directory is left alone.
var recognizedPrefixes = []string{"meta.", "index.", "dict.bin", "tags.json", "manifest.json"}

// WriteArtifacts persists a build's artifacts under dir, one file per
// artifact plus manifest.json. If clean is set, prior files with a
// recognized prefix are removed first.
func WriteArtifacts(dir string, art *Artifacts, clean bool) error {
	if clean {
		if err := cleanDir(dir); err != nil {
			return errors.Wrap(err, "comicidx: clean output dir")
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "comicidx: create output dir")
	}

	if err := os.WriteFile(filepath.Join(dir, "tags.json"), art.Tags, 0o644); err != nil {
		return errors.Wrap(err, "comicidx: write tags.json")
	}
	if err := os.WriteFile(filepath.Join(dir, "dict.bin"), art.Dict, 0o644); err != nil {
		return errors.Wrap(err, "comicidx: write dict.bin")
	}
	for i, b := range art.MetaShards {
		name := fmt.Sprintf("meta.%d.bin", i)
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return errors.Wrapf(err, "comicidx: write %s", name)
		}
	}
	for i, b := range art.IndexShards {
		name := fmt.Sprintf("index.%d.bin", i)
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return errors.Wrapf(err, "comicidx: write %s", name)
		}
	}

	manifestBytes, err := art.Manifest.Encode()
	if err != nil {
		return errors.Wrap(err, "comicidx: encode manifest.json")
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), manifestBytes, 0o644); err != nil {
		return errors.Wrap(err, "comicidx: write manifest.json")
	}
	return nil
}

func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		for _, prefix := range recognizedPrefixes {
			if strings.HasPrefix(name, prefix) {
				if err := os.Remove(filepath.Join(dir, name)); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
