// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"time"

	"golang.org/x/sys/unix"
)

// pollReadable performs a single-fd readiness wait, per §5: the core does
// no background polling of its own, so every bounded wait is one syscall on
// the calling goroutine. A negative timeout blocks indefinitely; a timeout
// of zero polls once without blocking.
func pollReadable(fd uintptr, timeout time.Duration) (bool, error) {
	ms := int(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}
