// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "time"

// EdgeEventBuffer is a user-space ring over a Request's edge events: it
// performs a bulk read from the kernel whenever drained, then hands out
// decoded events one at a time (§4.E).
type EdgeEventBuffer struct {
	r         *Request
	buf       []byte
	eventSize int
	start     int
	end       int
}

func newEdgeEventBuffer(r *Request, capacity int) *EdgeEventBuffer {
	size := r.EdgeEventSize()
	return &EdgeEventBuffer{
		r:         r,
		buf:       make([]byte, capacity*size),
		eventSize: size,
	}
}

// Capacity returns the maximum number of events the buffer can hold between
// kernel reads.
func (b *EdgeEventBuffer) Capacity() int {
	return len(b.buf) / b.eventSize
}

// Len returns the number of decoded-but-unread events currently buffered.
func (b *EdgeEventBuffer) Len() int {
	return (b.end - b.start) / b.eventSize
}

// IsEmpty returns true if there are no buffered events left to read.
func (b *EdgeEventBuffer) IsEmpty() bool {
	return b.start == b.end
}

// fill performs one bulk read from the kernel when the buffer is empty.
func (b *EdgeEventBuffer) fill() error {
	if !b.IsEmpty() {
		return nil
	}
	n, err := b.r.ReadEdgeEventsIntoSlice(b.buf)
	b.start = 0
	b.end = n
	return err
}

// HasEvent reports whether an event is available without blocking,
// performing a kernel read to refill the buffer if it is currently empty
// and the request fd is ready.
func (b *EdgeEventBuffer) HasEvent() (bool, error) {
	if !b.IsEmpty() {
		return true, nil
	}
	ready, err := b.r.HasEdgeEvent()
	if err != nil || !ready {
		return false, err
	}
	if err := b.fill(); err != nil {
		return false, err
	}
	return !b.IsEmpty(), nil
}

// WaitEvent blocks up to timeout for an event to become available.
func (b *EdgeEventBuffer) WaitEvent(timeout time.Duration) (bool, error) {
	if !b.IsEmpty() {
		return true, nil
	}
	ready, err := b.r.WaitEdgeEvent(timeout)
	if err != nil || !ready {
		return false, err
	}
	if err := b.fill(); err != nil {
		return false, err
	}
	return !b.IsEmpty(), nil
}

// ReadEvent returns the next buffered event, performing a blocking kernel
// read to refill the buffer first if it is empty.
func (b *EdgeEventBuffer) ReadEvent() (EdgeEvent, error) {
	if b.IsEmpty() {
		if err := b.fill(); err != nil {
			return EdgeEvent{}, err
		}
	}
	ev, err := b.r.EdgeEventFromSlice(b.buf[b.start : b.start+b.eventSize])
	b.start += b.eventSize
	return ev, err
}

// Events returns an iterator-style function yielding decoded events
// indefinitely; the kernel stream is open-ended, so it only ever returns an
// error, never a natural end (§9).
func (b *EdgeEventBuffer) Events() func() (EdgeEvent, error) {
	return b.ReadEvent
}
