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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCoverURL(t *testing.T) {
	cases := []struct {
		raw    string
		base   string
		suffix string
	}{
		{"", "", ""},
		{"https://cdn.example.com/covers/a/3.jpg", "https://cdn.example.com/covers/a/", "3.jpg"},
		{"https://cdn.example.com/covers/a/3.jpg?token=abc&exp=99", "https://cdn.example.com/covers/a/", "3.jpg?token=abc&exp=99"},
		{"https://cdn.example.com/covers/a/3.jpg#page2", "https://cdn.example.com/covers/a/", "3.jpg#page2"},
		{"https://cdn.example.com/covers/a/3.jpg?token=abc#page2", "https://cdn.example.com/covers/a/", "3.jpg?token=abc#page2"},
		{"covers/a/3.jpg", "covers/a/", "3.jpg"},
		{"3.jpg", "", "3.jpg"},
	}
	for _, c := range cases {
		base, suffix := splitCoverURL(c.raw)
		require.Equal(t, c.base, base, "base of %q", c.raw)
		require.Equal(t, c.suffix, suffix, "suffix of %q", c.raw)
		require.Equal(t, c.raw, base+suffix, "round trip of %q", c.raw)
	}
}
