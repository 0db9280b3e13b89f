// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/kvlab/gpiocdev/uapi"
)

// RequestBuilder accumulates a target chip, a Line Config, a consumer
// label, and buffer hints, and emits a concrete kernel request via Request.
//
// A RequestBuilder is a transient accumulator; it is not safe for
// concurrent use. Use NewRequestBuilder to construct one.
type RequestBuilder struct {
	cfg *LineConfig

	chipPath string
	chipErr  error

	consumer              string
	kernelEventBufferSize uint32
	userEventBufferSize   int
	abi                   ABIVersion
}

// NewRequestBuilder returns a RequestBuilder with no lines selected and a
// consumer label derived from the calling process id.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		cfg:      NewLineConfig(),
		consumer: "gpiocdev-" + strconv.Itoa(os.Getpid()),
	}
}

func (b *RequestBuilder) setChip(path string) {
	path = nameToPath(path)
	switch {
	case b.chipPath == "":
		b.chipPath = path
	case b.chipPath != path && b.chipErr == nil:
		b.chipErr = ErrMultipleChips{First: b.chipPath, Second: path}
	}
}

// WithConsumer sets the consumer label attached to the request.
func (b *RequestBuilder) WithConsumer(consumer string) *RequestBuilder {
	b.consumer = consumer
	return b
}

// WithKernelEventBufferSize hints the size of the in-kernel edge-event ring.
// Zero leaves the kernel default (16x the line count) in place. Not
// supported on uAPI v1.
func (b *RequestBuilder) WithKernelEventBufferSize(n uint32) *RequestBuilder {
	b.kernelEventBufferSize = n
	return b
}

// WithEventBufferSize hints the capacity of the user-space bulk-read buffer
// that Request.NewEdgeEventBuffer builds when given a capacity below 1.
func (b *RequestBuilder) WithEventBufferSize(n int) *RequestBuilder {
	b.userEventBufferSize = n
	return b
}

// WithABIVersion pins the uAPI version used for the request, skipping
// auto-detection.
func (b *RequestBuilder) WithABIVersion(v ABIVersion) *RequestBuilder {
	b.abi = v
	return b
}

// WithLine selects a single line on chip, replacing the current selection.
func (b *RequestBuilder) WithLine(chip string, offset int) *RequestBuilder {
	b.setChip(chip)
	b.cfg.WithLine(offset)
	return b
}

// WithLines selects a set of lines on chip, replacing the current
// selection.
func (b *RequestBuilder) WithLines(chip string, offsets []int) *RequestBuilder {
	b.setChip(chip)
	b.cfg.WithLines(offsets)
	return b
}

// WithoutLine removes offset from the line set.
func (b *RequestBuilder) WithoutLine(offset int) *RequestBuilder {
	b.cfg.WithoutLine(offset)
	return b
}

// WithoutLines removes offsets from the line set.
func (b *RequestBuilder) WithoutLines(offsets []int) *RequestBuilder {
	b.cfg.WithoutLines(offsets)
	return b
}

// WithOutputLines selects each offset in values on chip and configures it
// as an output at the given value.
func (b *RequestBuilder) WithOutputLines(chip string, values map[int]Value) *RequestBuilder {
	b.setChip(chip)
	b.cfg.WithOutputLines(values)
	return b
}

// WithFoundLine selects a line located by FindNamedLine or FindNamedLines.
//
// If the builder has not yet settled on a chip, fl's chip becomes the
// target. If the builder already targets a different chip, fl is
// silently dropped rather than raising ErrMultipleChips — this mirrors a
// deliberately surprising behavior of the reference implementation this
// module is grounded on, kept for compatibility: passing found lines from
// several chips only ever keeps the ones on the first chip selected.
func (b *RequestBuilder) WithFoundLine(fl FoundLine) *RequestBuilder {
	if b.chipPath != "" && b.chipPath != nameToPath(fl.ChipPath) {
		return b
	}
	b.setChip(fl.ChipPath)
	b.cfg.WithLine(fl.Info.Offset)
	return b
}

// FromLineConfig overwrites the currently-selected lines (or the base
// template, if none are selected) with settings.
func (b *RequestBuilder) FromLineConfig(settings LineSettings) *RequestBuilder {
	b.cfg.FromLineConfig(settings)
	return b
}

// AsInput selects the Input direction on the current selection.
func (b *RequestBuilder) AsInput() *RequestBuilder {
	b.cfg.AsInput()
	return b
}

// AsOutput selects the Output direction, with the given initial value, on
// the current selection.
func (b *RequestBuilder) AsOutput(value Value) *RequestBuilder {
	b.cfg.AsOutput(value)
	return b
}

// AsIs clears the direction on the current selection.
func (b *RequestBuilder) AsIs() *RequestBuilder {
	b.cfg.AsIs()
	return b
}

// AsActiveLow selects active-low polarity on the current selection.
func (b *RequestBuilder) AsActiveLow() *RequestBuilder {
	b.cfg.AsActiveLow()
	return b
}

// AsActiveHigh selects active-high polarity on the current selection.
func (b *RequestBuilder) AsActiveHigh() *RequestBuilder {
	b.cfg.AsActiveHigh()
	return b
}

// WithBias selects the line bias on the current selection.
func (b *RequestBuilder) WithBias(bias Bias) *RequestBuilder {
	b.cfg.WithBias(bias)
	return b
}

// WithDrive selects the output drive on the current selection.
func (b *RequestBuilder) WithDrive(drive Drive) *RequestBuilder {
	b.cfg.WithDrive(drive)
	return b
}

// WithEdgeDetection selects the edges to report on the current selection.
func (b *RequestBuilder) WithEdgeDetection(e EdgeDetection) *RequestBuilder {
	b.cfg.WithEdgeDetection(e)
	return b
}

// WithEventClock selects the event timestamp clock on the current
// selection.
func (b *RequestBuilder) WithEventClock(c EventClock) *RequestBuilder {
	b.cfg.WithEventClock(c)
	return b
}

// WithDebouncePeriod selects the debounce period on the current selection.
func (b *RequestBuilder) WithDebouncePeriod(d time.Duration) *RequestBuilder {
	b.cfg.WithDebouncePeriod(d)
	return b
}

// WithValue selects the initial output value on the current selection.
func (b *RequestBuilder) WithValue(v Value) *RequestBuilder {
	b.cfg.WithValue(v)
	return b
}

// Request is the terminal operation: it opens the chip, resolves the ABI
// version, translates the accumulated Line Config into a kernel request,
// and wraps the resulting fd into an active Request, per the seven-step
// procedure of §4.D.
func (b *RequestBuilder) Request() (*Request, error) {
	if b.chipErr != nil {
		return nil, b.chipErr
	}
	offsets := b.cfg.Lines()
	if len(offsets) == 0 {
		return nil, ErrNoLines
	}
	if len(offsets) > uapi.LinesMax {
		return nil, ErrTooManyLines
	}

	chip, err := OpenChip(b.chipPath)
	if err != nil {
		return nil, err
	}

	abi := b.abi
	if abi == abiVersionUnset {
		abi = chip.DetectABIVersion()
	}
	chip.UsingABIVersion(abi)

	sorted := append([]int(nil), offsets...)
	sort.Ints(sorted)

	req, err := newRequest(chip, sorted, b.cfg, b.consumer, abi, b.kernelEventBufferSize, b.userEventBufferSize)
	if err != nil {
		chip.Close()
		return nil, err
	}
	return req, nil
}
