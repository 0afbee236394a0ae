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

import (
	"github.com/pkg/errors"
)

// binWriter accumulates a binary artifact body: a cursor-style writer over
// fixed-width integer arrays and length-prefixed string pools, each section
// padded to a 4-byte boundary.
type binWriter struct {
	buf []byte
}

func (w *binWriter) u8(v byte) { w.buf = append(w.buf, v) }

func (w *binWriter) u16(v uint16) {
	var b [2]byte
	byteOrder.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) u32(v uint32) {
	var b [4]byte
	byteOrder.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *binWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }

// pad appends zero bytes until the buffer length is 4-byte aligned.
func (w *binWriter) pad() {
	for n := pad4(len(w.buf)); n > 0; n-- {
		w.buf = append(w.buf, 0)
	}
}

// stringPool writes offsets[count+1] (u32) followed by the concatenated
// UTF-8 bytes of ss, the pool layout used throughout meta.bin.
func (w *binWriter) stringPool(ss []string) {
	var off uint32
	for _, s := range ss {
		w.u32(off)
		off += uint32(len(s))
	}
	w.u32(off)
	for _, s := range ss {
		w.bytes([]byte(s))
	}
	w.pad()
}

// binReader is a cursor over an in-memory artifact body.
type binReader struct {
	b   []byte
	err error
}

func newBinReader(b []byte) *binReader { return &binReader{b: b} }

func (r *binReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.b = nil
}

func (r *binReader) need(n int) []byte {
	if r.err != nil || len(r.b) < n {
		r.fail(errors.Errorf("comicidx: truncated artifact, need %d bytes, have %d", n, len(r.b)))
		return nil
	}
	out := r.b[:n]
	r.b = r.b[n:]
	return out
}

func (r *binReader) u8() byte {
	b := r.need(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binReader) u16() uint16 {
	b := r.need(2)
	if b == nil {
		return 0
	}
	return byteOrder.Uint16(b)
}

func (r *binReader) u32() uint32 {
	b := r.need(4)
	if b == nil {
		return 0
	}
	return byteOrder.Uint32(b)
}

func (r *binReader) skip(n int) { r.need(n) }

func (r *binReader) u32Array(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = r.u32()
	}
	return out
}

func (r *binReader) u16Array(n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = r.u16()
	}
	return out
}

func (r *binReader) u8Array(n int) []byte {
	b := r.need(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// stringPool reads back a pool written by binWriter.stringPool for count
// entries, including the trailing 4-byte alignment padding.
func (r *binReader) stringPool(count int) []string {
	offsets := r.u32Array(count + 1)
	if r.err != nil {
		return nil
	}
	total := int(offsets[count])
	pool := r.need(total)
	if pool == nil {
		return nil
	}
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = string(pool[offsets[i]:offsets[i+1]])
	}
	r.padAfter(total)
	return out
}

// padAfter skips the zero padding binWriter.pad would have appended after a
// section of n content bytes.
func (r *binReader) padAfter(n int) {
	r.skip(pad4(n))
}
