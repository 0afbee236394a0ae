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
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CSVSource is a reference RowSource reading the builder's reference
// fixture format: one header row, then columns
// id,title,aliases,authors,cover,tags,flags. aliases and authors are
// pipe-separated; tags are pipe-separated "tagId:name" pairs; flags is the
// decimal value of the status byte.
type CSVSource struct {
	r       *csv.Reader
	started bool
}

// NewCSVSource wraps r as a RowSource, consuming and discarding its header
// row on the first call to Next.
func NewCSVSource(r io.Reader) *CSVSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7
	return &CSVSource{r: cr}
}

func (s *CSVSource) Next() (*Row, error) {
	if !s.started {
		s.started = true
		if _, err := s.r.Read(); err != nil {
			return nil, err
		}
	}

	rec, err := s.r.Read()
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: csv row: bad id %q", rec[0])
	}
	flags, err := strconv.ParseUint(strings.TrimSpace(rec[6]), 10, 8)
	if err != nil {
		return nil, errors.Wrapf(err, "comicidx: csv row: bad flags %q", rec[6])
	}

	row := &Row{
		ID:      int32(id),
		Title:   rec[1],
		Aliases: splitNonEmpty(rec[2], '|'),
		Authors: splitNonEmpty(rec[3], '|'),
		Cover:   rec[4],
		Flags:   byte(flags),
	}
	for _, raw := range splitNonEmpty(rec[5], '|') {
		tagID, name, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, errors.Errorf("comicidx: csv row: bad tag %q", raw)
		}
		n, err := strconv.ParseUint(tagID, 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "comicidx: csv row: bad tag id %q", tagID)
		}
		row.Tags = append(row.Tags, RowTag{TagID: uint16(n), Name: name})
	}
	return row, nil
}

func splitNonEmpty(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, string(sep))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
