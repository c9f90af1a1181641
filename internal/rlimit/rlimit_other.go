//go:build !linux

package rlimit

func current() (uint64, error) {
	return 0, ErrUnsupported
}

func lower(uint64) (uint64, error) {
	return 0, ErrUnsupported
}
