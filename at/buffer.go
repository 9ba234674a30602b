package at

import (
	"bytes"
)

// DefaultBufferSize is the capacity used when a LineBuffer is created
// with a non-positive size.
const DefaultBufferSize = 4096

// LineBuffer accumulates bytes read from the modem until complete lines
// can be extracted.
//
// The buffer is bounded. When an Append would exceed the capacity the
// oldest bytes are dropped, so a modem that never sends a delimiter cannot
// grow memory without limit. LineBuffer is not safe for concurrent use.
type LineBuffer struct {
	data    []byte
	size    int
	dropped int
}

// NewLineBuffer creates a buffer holding at most size bytes.
func NewLineBuffer(size int) *LineBuffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &LineBuffer{size: size}
}

// Append adds raw bytes read from the stream.
func (b *LineBuffer) Append(p []byte) {
	b.data = append(b.data, p...)
	if over := len(b.data) - b.size; over > 0 {
		b.data = append(b.data[:0], b.data[over:]...)
		b.dropped += over
	}
}

// ExtractLine returns the text before the first delimiter and consumes it
// together with the delimiter. When no delimiter is buffered it returns
// false and leaves the buffer untouched.
func (b *LineBuffer) ExtractLine(delim string) (string, bool) {
	advance, token, _ := SplitLines(delim)(b.data, false)
	if advance == 0 {
		return "", false
	}
	line := string(token)
	b.data = append(b.data[:0], b.data[advance:]...)
	return line, true
}

// HasLine reports whether a complete line is buffered.
func (b *LineBuffer) HasLine(delim string) bool {
	return bytes.Contains(b.data, []byte(delim))
}

// Contains reports whether the raw buffered bytes contain s, delimited or not.
func (b *LineBuffer) Contains(s string) bool {
	return bytes.Contains(b.data, []byte(s))
}

// Clear discards all buffered content.
func (b *LineBuffer) Clear() {
	b.data = b.data[:0]
}

func (b *LineBuffer) String() string {
	return string(b.data)
}

func (b *LineBuffer) Len() int {
	return len(b.data)
}

// Dropped returns the number of bytes discarded because of overflow.
func (b *LineBuffer) Dropped() int {
	return b.dropped
}
