//go:build linux

package rlimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func current() (uint64, error) {
	var lim unix.Rlimit

	err := unix.Getrlimit(unix.RLIMIT_AS, &lim)
	if err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}

	return lim.Cur, nil
}

func lower(limit uint64) (uint64, error) {
	var lim unix.Rlimit

	err := unix.Getrlimit(unix.RLIMIT_AS, &lim)
	if err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}

	if lim.Cur != unix.RLIM_INFINITY && lim.Cur <= limit {
		return lim.Cur, nil
	}

	lim.Cur = limit
	if lim.Max != unix.RLIM_INFINITY && lim.Cur > lim.Max {
		lim.Cur = lim.Max
	}

	err = unix.Setrlimit(unix.RLIMIT_AS, &lim)
	if err != nil {
		return 0, fmt.Errorf("setrlimit: %w", err)
	}

	return lim.Cur, nil
}
