package entropy

import (
	"fmt"
	"math"
)

// Encoder builds byte streams that a Cursor decodes back into chosen values.
//
// Used to write deterministic seeds without hand-assembling raw bytes. Every
// Append method is the exact inverse of the matching Cursor pull.
type Encoder struct {
	data []byte
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns a copy of the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return append([]byte(nil), e.data...)
}

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int {
	return len(e.data)
}

// AppendBoundedInt encodes v so that TakeBoundedInt(maxVal) returns it.
// Panics if v > maxVal.
func (e *Encoder) AppendBoundedInt(v, maxVal uint64) *Encoder {
	if v > maxVal {
		panic(fmt.Sprintf("entropy encoder: value %d exceeds bound %d", v, maxVal))
	}

	width := Width(maxVal)
	for i := width - 1; i >= 0; i-- {
		e.data = append(e.data, byte(v>>(8*uint(i))))
	}

	return e
}

// AppendBool encodes a value for TakeBool.
func (e *Encoder) AppendBool(b bool) *Encoder {
	if b {
		return e.AppendBoundedInt(1, 1)
	}

	return e.AppendBoundedInt(0, 1)
}

// AppendUint32 encodes a value for TakeUint32.
func (e *Encoder) AppendUint32(v uint32) *Encoder {
	return e.AppendBoundedInt(uint64(v), math.MaxUint32)
}

// AppendBytes appends raw bytes for TakeBytes or Rest.
func (e *Encoder) AppendBytes(b []byte) *Encoder {
	e.data = append(e.data, b...)

	return e
}
