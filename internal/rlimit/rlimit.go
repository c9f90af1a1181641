// Package rlimit caps the address space of the replay process, standing in
// for the fuzzing engine's RSS limit outside go test -fuzz.
package rlimit

import "errors"

// ErrUnsupported is returned by Apply on platforms without RLIMIT_AS.
var ErrUnsupported = errors.New("address space limit not supported on this platform")

const bytesPerMB = 1 << 20

// Apply lowers the soft address-space limit to mb megabytes. A zero mb is a
// no-op. The limit is never raised. It returns the soft limit in effect
// afterwards, in bytes.
func Apply(mb int) (uint64, error) {
	if mb <= 0 {
		return current()
	}

	return lower(uint64(mb) * bytesPerMB)
}
