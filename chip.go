// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kvlab/gpiocdev/uapi"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Chip represents a single GPIO chip, opened over its character device.
//
// A Chip is safe for concurrent use: info queries and watch/unwatch may be
// called from multiple goroutines, per §5.
type Chip struct {
	f *os.File

	// Name is the kernel name of the chip, e.g. "gpiochip0".
	Name string

	// Label is the functional name for the chip, as reported by its driver.
	Label string

	lines int

	mu      sync.Mutex
	abi     ABIVersion
	watched map[int]bool
	closed  bool
}

// Chips returns the names of the GPIO character devices present on the
// system, in natural numeric order.
func Chips() []string {
	ee, err := os.ReadDir("/dev")
	if err != nil {
		return nil
	}
	var cc []string
	for _, e := range ee {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			cc = append(cc, e.Name())
		}
	}
	sort.Slice(cc, func(i, j int) bool { return naturalLess(cc[i], cc[j]) })
	return cc
}

func naturalLess(lhs, rhs string) bool {
	if len(lhs) == len(rhs) {
		return lhs < rhs
	}
	return len(lhs) < len(rhs)
}

func nameToPath(name string) string {
	if strings.HasPrefix(name, "/dev/") {
		return name
	}
	return "/dev/" + name
}

// isCharDevice confirms path names an accessible character device, following
// symlinks. It does not check that the device is a GPIO chip; OpenChip does
// that with the chip-info ioctl.
func isCharDevice(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return ErrNotCharDevice
	}
	return nil
}

// OpenChip opens the named GPIO character device.
//
// name may be a bare device name ("gpiochip0") or a full path
// ("/dev/gpiochip0").
func OpenChip(name string) (*Chip, error) {
	path := nameToPath(name)
	if err := isCharDevice(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	ci, err := uapi.GetChipInfo(f.Fd())
	if err != nil {
		f.Close()
		if errors.Is(err, unix.ENOTTY) {
			return nil, ErrNotGpioDevice
		}
		return nil, err
	}
	c := &Chip{
		f:       f,
		Name:    uapi.BytesToString(ci.Name[:]),
		Label:   uapi.BytesToString(ci.Label[:]),
		lines:   int(ci.Lines),
		watched: map[int]bool{},
	}
	if len(c.Label) == 0 {
		c.Label = "unknown"
	}
	c.abi = c.detectABIVersionLocked()
	return c, nil
}

// Close releases the chip handle. It does not release any lines requested
// through it, nor does it fail if outstanding watches exist; those are
// implicitly cancelled by the kernel when the fd closes.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return c.f.Close()
}

// Info returns the chip's name, label, and line count.
func (c *Chip) Info() ChipInfo {
	return ChipInfo{Name: c.Name, Label: c.Label, Lines: c.lines}
}

// Lines returns the number of lines exposed by the chip.
func (c *Chip) Lines() int {
	return c.lines
}

// LineInfo returns the publicly available information for offset. This does
// not require the line to be requested.
func (c *Chip) LineInfo(offset int) (LineInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	if offset < 0 || offset >= c.lines {
		return LineInfo{}, ErrInvalidOffset(offset)
	}
	if c.abi == ABIVersionV1 {
		li, err := uapi.GetLineInfo(c.f.Fd(), uint32(offset))
		if err != nil {
			return LineInfo{}, err
		}
		return lineInfoFromV1(li), nil
	}
	li, err := uapi.GetLineInfoV2(c.f.Fd(), offset)
	if err != nil {
		return LineInfo{}, err
	}
	return lineInfoFromV2(li)
}

// WatchLineInfo installs a watch for changes to offset's info, returning its
// current info. Watching an offset that is already watched on this handle
// fails with the kernel's EBUSY.
func (c *Chip) WatchLineInfo(offset int) (LineInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	if c.abi == ABIVersionV1 {
		li := uapi.LineInfo{Offset: uint32(offset)}
		if err := uapi.WatchLineInfo(c.f.Fd(), &li); err != nil {
			return LineInfo{}, err
		}
		c.watched[offset] = true
		return lineInfoFromV1(li), nil
	}
	li := uapi.LineInfoV2{Offset: uint32(offset)}
	if err := uapi.WatchLineInfoV2(c.f.Fd(), &li); err != nil {
		return LineInfo{}, err
	}
	c.watched[offset] = true
	return lineInfoFromV2(li)
}

// UnwatchLineInfo removes a watch on offset's info, if any.
func (c *Chip) UnwatchLineInfo(offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	delete(c.watched, offset)
	return uapi.UnwatchLineInfo(c.f.Fd(), uint32(offset))
}

// HasInfoChangeEvent returns true if an info-change event is ready to read
// without blocking.
func (c *Chip) HasInfoChangeEvent() (bool, error) {
	return pollReadable(c.f.Fd(), 0)
}

// WaitInfoChangeEvent blocks up to timeout for an info-change event to
// become ready, returning false on timeout. A timeout of zero polls
// immediately.
func (c *Chip) WaitInfoChangeEvent(timeout time.Duration) (bool, error) {
	return pollReadable(c.f.Fd(), timeout)
}

// ReadInfoChangeEvent reads and decodes a single info-change event. This
// blocks until an event is available.
func (c *Chip) ReadInfoChangeEvent() (InfoChangeEvent, error) {
	if c.abi == ABIVersionV1 {
		lic, err := uapi.ReadLineInfoChanged(c.f.Fd())
		if err != nil {
			return InfoChangeEvent{}, wrapShortRead(err, "line-info-changed event")
		}
		return infoChangeEventFromV1(lic)
	}
	lic, err := uapi.ReadLineInfoChangedV2(c.f.Fd())
	if err != nil {
		return InfoChangeEvent{}, wrapShortRead(err, "line-info-changed event")
	}
	return infoChangeEventFromV2(lic)
}

// InfoChangeEvents returns an iterator-style function that blocks for and
// yields decoded info-change events indefinitely. The kernel stream is
// open-ended, so the returned function only returns an error; it never
// signals a natural end.
func (c *Chip) InfoChangeEvents() func() (InfoChangeEvent, error) {
	return c.ReadInfoChangeEvent
}

// probeLineInfoV2 reports whether the kernel answers the v2 GetLineInfo
// ioctl, which is how ABI detection distinguishes a v2-capable kernel from a
// v1-only one.
func (c *Chip) probeLineInfoV2() bool {
	_, err := uapi.GetLineInfoV2(c.f.Fd(), 0)
	return err == nil
}

func (c *Chip) detectABIVersionLocked() ABIVersion {
	if c.probeLineInfoV2() {
		return ABIVersionV2
	}
	return ABIVersionV1
}

// DetectABIVersion probes the kernel and returns the newest uAPI version it
// supports on this chip.
func (c *Chip) DetectABIVersion() ABIVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detectABIVersionLocked()
}

// SupportsABIVersion reports whether v can be used with this chip: the
// library must have been built with support for v (both are, here), and the
// kernel must answer the corresponding probe.
func (c *Chip) SupportsABIVersion(v ABIVersion) bool {
	switch v {
	case ABIVersionV1:
		return true
	case ABIVersionV2:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.probeLineInfoV2()
	default:
		return false
	}
}

// UsingABIVersion fixes the ABI version used for subsequent LineInfo and
// WatchLineInfo calls on this handle.
func (c *Chip) UsingABIVersion(v ABIVersion) *Chip {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abi = v
	return c
}

// ABIVersion returns the uAPI version currently in use for this chip handle.
func (c *Chip) ABIVersion() ABIVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.abi
}

func (c *Chip) fd() uintptr {
	return c.f.Fd()
}

// findLine searches the chip's lines, in offset order, for one named name.
func (c *Chip) findLine(name string) (int, bool) {
	for o := 0; o < c.lines; o++ {
		li, err := c.LineInfo(o)
		if err == nil && li.Name == name {
			return o, true
		}
	}
	return 0, false
}
