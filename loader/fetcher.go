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
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	mmap "github.com/edsrzf/mmap-go"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Fetcher retrieves the raw bytes of an artifact at a server-relative
// path. Fetch always returns the uncompressed body, inflating transparently
// if the server sent it gzip-encoded.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// gzipMagic is the first three bytes of a gzip stream.
var gzipMagic = [3]byte{0x1f, 0x8b, 0x08}

func maybeInflate(b []byte) ([]byte, error) {
	if len(b) < 3 || b[0] != gzipMagic[0] || b[1] != gzipMagic[1] || b[2] != gzipMagic[2] {
		return b, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "comicidx: inflate artifact")
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// HTTPFetcher fetches artifacts from a base URL with bounded retries.
type HTTPFetcher struct {
	client  *retryablehttp.Client
	baseURL string
}

// NewHTTPFetcher builds a Fetcher rooted at baseURL. logFn receives
// retryablehttp's own retry/backoff log lines; pass nil to silence them.
func NewHTTPFetcher(baseURL string, logFn retryablehttp.LeveledLogger) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = logFn
	return &HTTPFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	url := f.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: build request for %s", path)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: fetch %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("comicidx: fetch %s: %s: %s", path, resp.Status, detail)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: read body for %s", path)
	}
	return maybeInflate(body)
}

// DiskFetcher reads artifacts from a local directory, for the demo query
// CLI and builder-side verification where there is no server to speak to.
// Each read memory-maps the file and copies the mapped bytes into a plain
// slice (see mmapReadAll).
type DiskFetcher struct {
	Dir string
}

func (f *DiskFetcher) Fetch(_ context.Context, path string) ([]byte, error) {
	b, err := mmapReadAll(filepath.Join(f.Dir, path))
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: read %s", path)
	}
	return maybeInflate(b)
}

// mmapReadAll memory-maps path read-only, copies its contents into a plain
// byte slice, and unmaps it. The copy is unavoidable: callers hold onto the
// returned bytes well past the point the mapping closes.
func mmapReadAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: memory map %s", path)
	}
	defer m.Unmap()

	return append([]byte(nil), m...), nil
}
