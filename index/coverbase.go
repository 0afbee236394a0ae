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
	"net/url"
	"path"
	"strings"
)

// splitCoverURL splits a cover image URL into a shared base (scheme, host
// and leading directory path) and the per-document suffix. base + suffix
// always reconstructs the original URL, so any query string or fragment
// (CDN-signed covers carry tokens in the query) stays in the suffix. An
// empty URL yields an empty base, so it lands on the reserved "empty"
// cover-base slot. A URL that does not parse, or has neither scheme nor
// host, is split at its last '/'; it gets an empty base only when it
// contains no '/'.
func splitCoverURL(raw string) (base, suffix string) {
	if raw == "" {
		return "", ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" && u.Host == "" {
		if i := strings.LastIndexByte(raw, '/'); i >= 0 {
			return raw[:i+1], raw[i+1:]
		}
		return "", raw
	}
	dir, file := path.Split(u.Path)
	suffix = file
	if u.ForceQuery || u.RawQuery != "" {
		suffix += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		suffix += "#" + u.EscapedFragment()
	}
	u.Path = dir
	u.ForceQuery = false
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), suffix
}
