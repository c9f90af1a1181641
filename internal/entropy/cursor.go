// Package entropy turns raw fuzz input into bounded values.
//
// A Cursor reads a byte buffer front to back. It never reads past the end:
// when the buffer runs out, integer pulls report ErrExhausted and return 0,
// and byte pulls return whatever is left. The same input always produces the
// same sequence of values, which Go's fuzzer relies on to minimize failing
// inputs.
package entropy

import (
	"errors"
	"math"
)

// ErrExhausted reports that no bytes remain to satisfy a pull.
//
// Callers treat it as "use the minimal value" and keep decoding.
var ErrExhausted = errors.New("entropy exhausted")

// Cursor reads bytes sequentially from a buffer.
type Cursor struct {
	data []byte
	pos  int
}

// New creates a cursor over data. The cursor does not copy data; callers must
// not mutate it while decoding.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the total buffer length.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Used returns the number of consumed bytes.
func (c *Cursor) Used() int {
	return c.pos
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// IsEmpty reports whether every byte has been consumed.
func (c *Cursor) IsEmpty() bool {
	return c.pos >= len(c.data)
}

// TakeBoundedInt returns an integer in [0, maxVal].
//
// It reads as many bytes as needed to cover maxVal (one byte for values up to
// 0xFF, four for math.MaxUint32), most significant first, and reduces the
// result modulo maxVal+1. Fewer bytes are used when the buffer runs short.
// A zero maxVal consumes nothing. With no bytes left it returns 0 and
// ErrExhausted.
func (c *Cursor) TakeBoundedInt(maxVal uint64) (uint64, error) {
	if maxVal == 0 {
		return 0, nil
	}

	if c.IsEmpty() {
		return 0, ErrExhausted
	}

	width := Width(maxVal)

	var acc uint64

	for range width {
		if c.IsEmpty() {
			break
		}

		acc = acc<<8 | uint64(c.data[c.pos])
		c.pos++
	}

	if maxVal == math.MaxUint64 {
		return acc, nil
	}

	return acc % (maxVal + 1), nil
}

// TakeBytes returns the next n bytes, or all remaining bytes if fewer than n
// are left. The returned slice aliases the buffer and has its capacity clipped.
func (c *Cursor) TakeBytes(n int) []byte {
	if n <= 0 {
		return []byte{}
	}

	end := min(c.pos+n, len(c.data))
	out := c.data[c.pos:end:end]
	c.pos = end

	return out
}

// Rest consumes and returns every remaining byte.
func (c *Cursor) Rest() []byte {
	return c.TakeBytes(c.Remaining())
}

// TakeBool returns one bounded pull interpreted as a truth value.
// An exhausted cursor yields false.
func (c *Cursor) TakeBool() bool {
	v, _ := c.TakeBoundedInt(1)

	return v == 1
}

// TakeUint32 returns a value in [0, math.MaxUint32].
// An exhausted cursor yields 0.
func (c *Cursor) TakeUint32() uint32 {
	v, _ := c.TakeBoundedInt(math.MaxUint32)

	return uint32(v)
}

// Width returns the number of bytes TakeBoundedInt reads for maxVal v.
func Width(v uint64) int {
	width := 0
	for v > 0 {
		width++
		v >>= 8
	}

	return width
}
