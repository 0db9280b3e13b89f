// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "fmt"

var (
	// ErrClosed is returned when performing an operation on a closed Chip
	// or Request.
	ErrClosed = fmt.Errorf("gpiocdev: closed")

	// ErrPermissionDenied identifies a line that could not be requested or
	// reconfigured because the caller lacks permission to do so. No operation
	// in this package returns it; permission failures surface as the
	// underlying OS error.
	ErrPermissionDenied = fmt.Errorf("gpiocdev: permission denied")

	// ErrNoLinesSelected is returned by Request.SetValues on a uAPI v2
	// request when none of the supplied offsets is part of the request.
	ErrNoLinesSelected = fmt.Errorf("gpiocdev: no lines selected")

	// ErrNoLines is returned by RequestBuilder.Request when no lines have
	// been selected.
	ErrNoLines = fmt.Errorf("gpiocdev: no lines specified")

	// ErrTooManyLines is returned by RequestBuilder.Request when more than
	// the kernel maximum of 64 lines have been selected.
	ErrTooManyLines = fmt.Errorf("gpiocdev: too many lines specified")

	// ErrNotRequested is returned by Request operations that reference an
	// offset which is not part of the request.
	ErrNotRequested = fmt.Errorf("gpiocdev: line is not part of this request")

	// ErrNotCharDevice is returned by OpenChip when the named path does
	// not refer to a character device.
	ErrNotCharDevice = fmt.Errorf("gpiocdev: not a character device")

	// ErrNotGpioDevice is returned by OpenChip when the named character
	// device does not respond to the GPIO chip-info ioctl.
	ErrNotGpioDevice = fmt.Errorf("gpiocdev: not a GPIO character device")

	// ErrConflictingEdgeDetection identifies conflicting edge detection
	// settings. No operation in this package returns it; edge detection on
	// more than one line of a v1 request is reported as
	// ErrV1EdgeSingleLineOnly.
	ErrConflictingEdgeDetection = fmt.Errorf("gpiocdev: conflicting edge detection")

	// ErrConflictingDebounce identifies conflicting debounce settings. No
	// operation in this package returns it; a debounce period on a v1
	// request is reported as ErrUapiIncompatibility.
	ErrConflictingDebounce = fmt.Errorf("gpiocdev: conflicting debounce")

	// ErrV1RequiresUniformConfig is returned when a v1 request is built
	// from a LineConfig whose selected lines do not all share identical
	// effective settings; the v1 handle request can only carry one flag
	// word for the whole request.
	ErrV1RequiresUniformConfig = fmt.Errorf("gpiocdev: uAPI v1 requires a uniform config across all requested lines")

	// ErrV1EdgeSingleLineOnly is returned when edge detection is requested
	// on more than one line of a v1 request.
	ErrV1EdgeSingleLineOnly = fmt.Errorf("gpiocdev: uAPI v1 only supports edge detection on a single line")

	// ErrV1NoEdgeReconfig is returned by Reconfigure on a v1 request when
	// either the current or the replacement config has edge detection
	// enabled; the v1 SetLineConfig ioctl cannot add or remove edge
	// detection on a live request.
	ErrV1NoEdgeReconfig = fmt.Errorf("gpiocdev: uAPI v1 cannot change edge detection via reconfigure")

	// ErrV1RequiresAllLines is returned by SetValues on a v1 request when
	// the caller did not supply a value for every requested line; the v1
	// SetLineValues ioctl always writes a value for every line in the
	// request.
	ErrV1RequiresAllLines = fmt.Errorf("gpiocdev: uAPI v1 requires a value for every requested line")
)

// ErrInvalidOffset indicates a line offset exceeds the number of lines on
// the chip.
type ErrInvalidOffset uint32

func (e ErrInvalidOffset) Error() string {
	return fmt.Sprintf("gpiocdev: invalid offset %d", uint32(e))
}

// ErrLineNotFound indicates a requested line name could not be found on any
// of the chips searched.
type ErrLineNotFound string

func (e ErrLineNotFound) Error() string {
	return fmt.Sprintf("gpiocdev: line %q not found", string(e))
}

// ErrLineBusy indicates a line is already requested by this or another
// process, or reserved by the kernel, and so cannot be requested again.
type ErrLineBusy struct {
	Offset uint32
}

func (e ErrLineBusy) Error() string {
	return fmt.Sprintf("gpiocdev: line %d is busy", e.Offset)
}

// ErrUapiIncompatibility indicates that a requested feature is not supported
// by the ABI version in use.
//
// A request built against uAPI v1 that asks for a v2-only feature (e.g.
// per-line debounce, event-clock selection) fails with this error rather
// than silently degrading.
type ErrUapiIncompatibility struct {
	// Feature is the name of the unsupported feature.
	Feature string

	// AbiVersion is the uAPI version that cannot support the feature.
	AbiVersion int
}

func (e ErrUapiIncompatibility) Error() string {
	return fmt.Sprintf("gpiocdev: uAPI v%d does not support %s", e.AbiVersion, e.Feature)
}

// ErrAbiCapacityExceeded indicates the line configuration, once packed for
// the wire, could not fit within the fixed per-request attribute table.
type ErrAbiCapacityExceeded struct {
	// Attempted is the number of attribute slots the configuration would
	// require.
	Attempted int

	// Available is the number of attribute slots the ABI provides.
	Available int
}

func (e ErrAbiCapacityExceeded) Error() string {
	return fmt.Sprintf("gpiocdev: line configuration needs %d attribute slots, only %d available",
		e.Attempted, e.Available)
}

// ErrMultipleChips indicates a RequestBuilder was asked to select lines from
// more than one chip, something a single line request cannot span.
type ErrMultipleChips struct {
	// First is the name of the chip first selected.
	First string

	// Second is the name of the chip whose line selection conflicted.
	Second string
}

func (e ErrMultipleChips) Error() string {
	return fmt.Sprintf("gpiocdev: lines from multiple chips selected (%s, %s)", e.First, e.Second)
}

// ErrShortRead indicates a read of an event record from a chip or request
// fd returned fewer bytes than the fixed-size record requires.
type ErrShortRead struct {
	// Record identifies the kind of record that was read short.
	Record string

	// Expected is the number of bytes the record occupies on the wire.
	Expected int

	// Actual is the number of bytes actually read.
	Actual int
}

func (e ErrShortRead) Error() string {
	return fmt.Sprintf("gpiocdev: short read of %s: expected %d bytes, got %d",
		e.Record, e.Expected, e.Actual)
}

// ErrProtocol indicates the kernel returned a value that is not one of the
// set of values the uAPI defines for that field.
//
// This can only occur if the running kernel is newer than, and has extended
// the uAPI beyond, the version this package was built against.
type ErrProtocol struct {
	// Field identifies the field that contained the unrecognised value.
	Field string

	// Value is the unrecognised value, rendered for display.
	Value string
}

func (e ErrProtocol) Error() string {
	return fmt.Sprintf("gpiocdev: protocol error: unrecognised value for %s: %s", e.Field, e.Value)
}
