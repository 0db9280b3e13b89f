// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "time"

// EdgeEvent represents a change in the level of a requested line.
type EdgeEvent struct {
	// Timestamp indicates the time the event was detected.
	//
	// On v2 this is nanoseconds from CLOCK_MONOTONIC, CLOCK_REALTIME, or the
	// hardware timestamping engine, depending on the requested EventClock.
	// On v1 it is always CLOCK_MONOTONIC.
	Timestamp time.Duration

	// Type indicates the type of change detected.
	Type EdgeEventType

	// Offset is the line that triggered the event.
	Offset int

	// Seqno is the sequence number for this event in the context of all
	// lines in the request it is for.
	//
	// Zero on v1, where the kernel does not provide it.
	Seqno uint32

	// LineSeqno is the sequence number for this event in the context of
	// just the line it is for.
	//
	// Zero on v1, where the kernel does not provide it.
	LineSeqno uint32
}

// InfoChangeEvent represents a change in the info for a line.
type InfoChangeEvent struct {
	// Info is the updated info for the line.
	Info LineInfo

	// Timestamp indicates the time the change was detected.
	Timestamp time.Duration

	// Type indicates the type of change.
	Type InfoChangeType
}

// LineInfo contains the details of a single line of a chip, as reported by
// the kernel.
type LineInfo struct {
	// Offset is the offset of the line on the chip.
	Offset int

	// Name is the system name for the line.
	Name string

	// Consumer is the name of the entity that has requested the line, if
	// used.
	Consumer string

	// Used indicates the line is in use, either by this or another
	// process, or by the kernel.
	Used bool

	// Config is the effective configuration of the line, as applied by
	// the kernel, which may differ from what was requested (e.g. the v1
	// ABI never reports edge detection, event clock, or debounce).
	Config LineSettings
}

// ChipInfo contains the details of a GPIO chip.
type ChipInfo struct {
	// Name is the Linux kernel name for the chip, e.g. "gpiochip0".
	Name string

	// Label is a functional name for the chip, usually defined by the
	// kernel driver that implements it.
	Label string

	// Lines is the number of lines supported by the chip.
	Lines int
}
