// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Size capped output buffer for capturing external process output.
//
// A Buffer never fails a Write: bytes beyond the limit are dropped and the overflow is
// recorded instead, so a chatty child process is not killed by a broken pipe.
package lw

import "bytes"

// Buffer is an io.Writer that retains at most Limit bytes.
type Buffer struct {
	buf        bytes.Buffer
	limit      int
	overflowed bool
}

// NewBuffer creates Buffer retaining at most limit bytes. A negative limit is treated as 0.
func NewBuffer(limit int) *Buffer {
	if limit < 0 {
		limit = 0
	}
	return &Buffer{limit: limit}
}

// Write implements io.Writer for *Buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if len(p) > room {
		b.overflowed = true
		b.buf.Write(p[:room])
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

// Bytes returns retained bytes.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Buffer) String() string {
	return b.buf.String()
}

// Overflowed reports whether any written bytes were dropped.
func (b *Buffer) Overflowed() bool {
	return b.overflowed
}

// Limit returns the capacity of Buffer.
func (b *Buffer) Limit() int {
	return b.limit
}
