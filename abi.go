// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

// ABIVersion identifies a revision of the Linux GPIO character-device uAPI.
type ABIVersion int

const (
	// abiVersionUnset indicates no ABI version has been pinned; the chip
	// or builder will probe the kernel to pick one.
	abiVersionUnset ABIVersion = iota

	// ABIVersionV1 is the original, legacy GPIO character-device ABI.
	ABIVersionV1

	// ABIVersionV2 is the current GPIO character-device ABI, and the only
	// one that can express per-line attributes, debounce, and event-clock
	// selection.
	ABIVersionV2
)

func (v ABIVersion) String() string {
	switch v {
	case ABIVersionV1:
		return "v1"
	case ABIVersionV2:
		return "v2"
	default:
		return "unset"
	}
}
