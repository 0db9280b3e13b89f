// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// Package uapi provides the Linux GPIO character-device uAPI v1 and v2
// wire structures and the ioctls that operate on them.
//
// The structures here are deliberately dumb: they mirror the kernel
// layout byte for byte and carry no validation or translation logic.
// Translating an application-level line configuration into these
// structures, and validating what the kernel hands back, is the job
// of the codec in the parent package.
package uapi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// GetChipInfo returns the ChipInfo for the GPIO character device.
func GetChipInfo(fd uintptr) (ChipInfo, error) {
	var ci ChipInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getChipInfoIoctl),
		uintptr(unsafe.Pointer(&ci)))
	if errno != 0 {
		return ci, errno
	}
	return ci, nil
}

// GetLineInfo returns the LineInfo for one line from the GPIO character device.
//
// Offsets are zero based.
func GetLineInfo(fd uintptr, offset uint32) (LineInfo, error) {
	var li LineInfo
	li.Offset = offset
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineInfoIoctl),
		uintptr(unsafe.Pointer(&li)))
	if errno != 0 {
		return LineInfo{}, errno
	}
	return li, nil
}

// WatchLineInfo sets a v1 watch on the line named by info.Offset.
//
// If successful the current line info is returned in info.
func WatchLineInfo(fd uintptr, info *LineInfo) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(watchLineInfoIoctl),
		uintptr(unsafe.Pointer(info)))
	if errno != 0 {
		return errno
	}
	return nil
}

// UnwatchLineInfo removes a watch (v1 or v2) on the line at offset.
func UnwatchLineInfo(fd uintptr, offset uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(unwatchLineInfoIoctl),
		uintptr(unsafe.Pointer(&offset)))
	if errno != 0 {
		return errno
	}
	return nil
}

// GetLineEvent requests a line from the GPIO character device with event
// reporting enabled.
func GetLineEvent(fd uintptr, request *EventRequest) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineEventIoctl),
		uintptr(unsafe.Pointer(request)))
	if errno != 0 {
		return errno
	}
	return nil
}

// GetLineHandle requests a line from the GPIO character device.
//
// This request is without event reporting.
func GetLineHandle(fd uintptr, request *HandleRequest) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineHandleIoctl),
		uintptr(unsafe.Pointer(request)))
	if errno != 0 {
		return errno
	}
	return nil
}

// GetLineValues returns the values of a set of requested lines.
func GetLineValues(fd uintptr, values *HandleData) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineValuesIoctl),
		uintptr(unsafe.Pointer(&values[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// SetLineValues sets the values of a set of requested lines.
func SetLineValues(fd uintptr, values HandleData) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(setLineValuesIoctl),
		uintptr(unsafe.Pointer(&values[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// SetLineConfig updates the configuration of an existing v1 handle request.
func SetLineConfig(fd uintptr, config *HandleConfig) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(setLineConfigIoctl),
		uintptr(unsafe.Pointer(config)))
	if errno != 0 {
		return errno
	}
	return nil
}

// ErrShortRead indicates a read of a fixed-size event record returned fewer
// bytes than the record occupies on the wire.
type ErrShortRead struct {
	// Expected is the number of bytes the record occupies on the wire.
	Expected int

	// Actual is the number of bytes actually read.
	Actual int
}

func (e ErrShortRead) Error() string {
	return fmt.Sprintf("uapi: short read: expected %d bytes, got %d", e.Expected, e.Actual)
}

// readRecord performs a single read of exactly size bytes from fd, returning
// ErrShortRead if the device yielded fewer.
func readRecord(fd uintptr, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := unix.Read(int(fd), buf)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, ErrShortRead{Expected: size, Actual: n}
	}
	return buf, nil
}

// ReadEvent reads a single v1 edge event from a requested line.
//
// This is blocking and should only be called when the fd is known to be
// ready to read.
func ReadEvent(fd uintptr) (EventData, error) {
	var ed EventData
	buf, err := readRecord(fd, int(unsafe.Sizeof(ed)))
	if err != nil {
		return ed, err
	}
	err = binary.Read(bytes.NewReader(buf), nativeEndian, &ed)
	return ed, err
}

// ReadLineInfoChanged reads a v1 line-info-changed event from a chip.
//
// This is blocking and should only be called when the fd is known to be
// ready to read.
func ReadLineInfoChanged(fd uintptr) (LineInfoChangeEvent, error) {
	var lic LineInfoChangeEvent
	buf, err := readRecord(fd, int(unsafe.Sizeof(lic)))
	if err != nil {
		return lic, err
	}
	err = binary.Read(bytes.NewReader(buf), nativeEndian, &lic)
	return lic, err
}

// BytesToString converts a NUL-terminated/padded byte array, as used for
// kernel name and consumer fields, into a Go string.
func BytesToString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// IOCTL command codes
type ioctl uintptr

var (
	getChipInfoIoctl     ioctl
	getLineInfoIoctl     ioctl
	watchLineInfoIoctl   ioctl
	unwatchLineInfoIoctl ioctl
	getLineHandleIoctl   ioctl
	getLineEventIoctl    ioctl
	getLineValuesIoctl   ioctl
	setLineValuesIoctl   ioctl
	setLineConfigIoctl   ioctl
)

// Size of name and consumer strings.
const nameSize = 32

func init() {
	// ioctls require struct sizes which are only available at runtime.
	var ci ChipInfo
	getChipInfoIoctl = ior(0xB4, 0x01, unsafe.Sizeof(ci))
	var li LineInfo
	getLineInfoIoctl = iorw(0xB4, 0x02, unsafe.Sizeof(li))
	var hr HandleRequest
	getLineHandleIoctl = iorw(0xB4, 0x03, unsafe.Sizeof(hr))
	var er EventRequest
	getLineEventIoctl = iorw(0xB4, 0x04, unsafe.Sizeof(er))
	var hd HandleData
	getLineValuesIoctl = iorw(0xB4, 0x08, unsafe.Sizeof(hd))
	setLineValuesIoctl = iorw(0xB4, 0x09, unsafe.Sizeof(hd))
	var hc HandleConfig
	setLineConfigIoctl = iorw(0xB4, 0x0A, unsafe.Sizeof(hc))
	watchLineInfoIoctl = iorw(0xB4, 0x0B, unsafe.Sizeof(li))
	var off uint32
	unwatchLineInfoIoctl = iorw(0xB4, 0x0C, unsafe.Sizeof(off))
}

// ChipInfo contains the details of a GPIO chip.
type ChipInfo struct {
	Name  [nameSize]byte
	Label [nameSize]byte
	Lines uint32
}

// LineInfo contains the details of a single line of a GPIO chip (uAPI v1).
type LineInfo struct {
	Offset   uint32
	Flags    LineFlag
	Name     [nameSize]byte
	Consumer [nameSize]byte
}

// LineInfoChangeEvent reports a change to the info of a watched line (uAPI v1).
type LineInfoChangeEvent struct {
	Info      LineInfo
	Timestamp uint64
	Type      ChangeType
	Padding   [5]uint32
}

// ChangeType indicates the type of change reported by an info-change event.
//
// Shared by uAPI v1 and v2.
type ChangeType uint32

const (
	// ChangeRequested indicates the line has been requested.
	ChangeRequested ChangeType = iota + 1

	// ChangeReleased indicates the line has been released.
	ChangeReleased

	// ChangeReconfigured indicates the line configuration has changed.
	ChangeReconfigured
)

// IsValid returns true if t is one of the kind values the kernel may report.
func (t ChangeType) IsValid() bool {
	return t >= ChangeRequested && t <= ChangeReconfigured
}

// LineFlag are the flags for a line (uAPI v1).
type LineFlag uint32

const (
	// LineFlagRequested indicates that the line has been requested.
	LineFlagRequested = LineFlag(1) << iota
	// LineFlagIsOut indicates that the line is an output.
	LineFlagIsOut
	// LineFlagActiveLow indicates that the line is active low.
	LineFlagActiveLow
	// LineFlagOpenDrain indicates the line will pull low when set low but
	// float when set high. Output only; mutually exclusive with OpenSource.
	LineFlagOpenDrain
	// LineFlagOpenSource indicates the line will pull high when set high
	// but float when set low. Output only; mutually exclusive with OpenDrain.
	LineFlagOpenSource
	// LineFlagPullUp indicates the line has pull-up bias enabled.
	LineFlagPullUp
	// LineFlagPullDown indicates the line has pull-down bias enabled.
	LineFlagPullDown
	// LineFlagBiasDisable indicates the line bias is disabled.
	LineFlagBiasDisable
)

// IsRequested returns true if the line is requested.
func (f LineFlag) IsRequested() bool { return f&LineFlagRequested != 0 }

// IsOut returns true if the line is an output.
func (f LineFlag) IsOut() bool { return f&LineFlagIsOut != 0 }

// IsActiveLow returns true if the line is active low.
func (f LineFlag) IsActiveLow() bool { return f&LineFlagActiveLow != 0 }

// IsOpenDrain returns true if the line is open-drain.
func (f LineFlag) IsOpenDrain() bool { return f&LineFlagOpenDrain != 0 }

// IsOpenSource returns true if the line is open-source.
func (f LineFlag) IsOpenSource() bool { return f&LineFlagOpenSource != 0 }

// IsPullUp returns true if the line has pull-up bias.
func (f LineFlag) IsPullUp() bool { return f&LineFlagPullUp != 0 }

// IsPullDown returns true if the line has pull-down bias.
func (f LineFlag) IsPullDown() bool { return f&LineFlagPullDown != 0 }

// IsBiasDisable returns true if the line has bias disabled.
func (f LineFlag) IsBiasDisable() bool { return f&LineFlagBiasDisable != 0 }

// HandleRequest is a request for control of a set of lines (uAPI v1).
//
// The lines must all be on the same GPIO chip.
type HandleRequest struct {
	Offsets       [HandlesMax]uint32
	Flags         HandleFlag
	DefaultValues [HandlesMax]byte
	Consumer      [nameSize]byte
	Lines         uint32
	Fd            int32
}

// HandleConfig updates the flags/values of an existing v1 handle request.
type HandleConfig struct {
	Flags         HandleFlag
	DefaultValues [HandlesMax]byte
	Padding       [4]uint32
}

// HandleFlag contains the request flags for a v1 handle request.
type HandleFlag uint32

const (
	// HandleRequestInput requests the line as an input.
	HandleRequestInput = HandleFlag(1) << iota
	// HandleRequestOutput requests the line as an output.
	HandleRequestOutput
	// HandleRequestActiveLow requests the line be made active low.
	HandleRequestActiveLow
	// HandleRequestOpenDrain requests the line be made open drain.
	HandleRequestOpenDrain
	// HandleRequestOpenSource requests the line be made open source.
	HandleRequestOpenSource
	// HandleRequestPullUp requests the line have pull-up bias.
	HandleRequestPullUp
	// HandleRequestPullDown requests the line have pull-down bias.
	HandleRequestPullDown
	// HandleRequestBiasDisable requests the line have bias disabled.
	HandleRequestBiasDisable

	// HandlesMax is the maximum number of lines in a single v1 request.
	HandlesMax = 64
)

// IsInput returns true if the line is requested as an input.
func (f HandleFlag) IsInput() bool { return f&HandleRequestInput != 0 }

// IsOutput returns true if the line is requested as an output.
func (f HandleFlag) IsOutput() bool { return f&HandleRequestOutput != 0 }

// IsActiveLow returns true if the line is requested as active low.
func (f HandleFlag) IsActiveLow() bool { return f&HandleRequestActiveLow != 0 }

// IsOpenDrain returns true if the line is requested as open drain.
func (f HandleFlag) IsOpenDrain() bool { return f&HandleRequestOpenDrain != 0 }

// IsOpenSource returns true if the line is requested as open source.
func (f HandleFlag) IsOpenSource() bool { return f&HandleRequestOpenSource != 0 }

// HandleData contains the logical value for each line of a v1 request.
//
// Zero is a logical low and any other value is a logical high.
type HandleData [HandlesMax]uint8

// EventRequest is a request for a single line with event reporting enabled
// (uAPI v1).
type EventRequest struct {
	Offset      uint32
	HandleFlags HandleFlag
	EventFlags  EventFlag
	Consumer    [nameSize]byte
	Fd          int32
}

// EventFlag indicates the edge(s) that will be reported (uAPI v1).
type EventFlag uint32

const (
	// EventRequestRisingEdge requests rising edge events.
	EventRequestRisingEdge = EventFlag(1) << iota
	// EventRequestFallingEdge requests falling edge events.
	EventRequestFallingEdge
	// EventRequestBothEdges requests both rising and falling edge events.
	EventRequestBothEdges = EventRequestRisingEdge | EventRequestFallingEdge
)

// IsRisingEdge returns true if rising edge events have been requested.
func (f EventFlag) IsRisingEdge() bool { return f&EventRequestRisingEdge != 0 }

// IsFallingEdge returns true if falling edge events have been requested.
func (f EventFlag) IsFallingEdge() bool { return f&EventRequestFallingEdge != 0 }

// IsBothEdges returns true if both edges have been requested.
func (f EventFlag) IsBothEdges() bool { return f&EventRequestBothEdges == EventRequestBothEdges }

// IsValid returns true if f is one of the event kind values (as opposed to a
// request-flag combination) the kernel reports for a v1 edge event: exactly
// one of rising or falling.
func (f EventFlag) IsValid() bool {
	return f == EventRequestRisingEdge || f == EventRequestFallingEdge
}
