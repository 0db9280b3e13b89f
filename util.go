// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "strconv"

// formatUint renders a kernel-supplied numeric field for inclusion in a
// ErrProtocol, without pulling in fmt's reflection-based formatting for a
// single integer.
func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
