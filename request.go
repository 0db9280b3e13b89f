// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"
	"unsafe"

	"github.com/kvlab/gpiocdev/uapi"
	"golang.org/x/sys/unix"
)

// Request is an active kernel-registered claim over an ordered sequence of
// lines on one chip, owning the file descriptor returned by the
// acquisition ioctl.
//
// Value I/O, reconfigure, and event reads are all safe to call concurrently
// on the same Request; the cached config is guarded by a reader/writer
// lock, taken exclusively only after a reconfigure ioctl has already
// succeeded (§9).
type Request struct {
	chip    *Chip
	offsets []int
	indexOf map[int]int
	fd      uintptr
	abi     ABIVersion

	userEventBufferSize int

	mu     sync.RWMutex
	cfg    *LineConfig
	closed bool
}

func newRequest(chip *Chip, offsets []int, cfg *LineConfig, consumer string, abi ABIVersion, kernelEventBufferSize uint32, userEventBufferSize int) (*Request, error) {
	snapshot := cfg.Overlay(nil)

	var fd uintptr
	if abi == ABIVersionV1 {
		hr, er, err := packV1(offsets, snapshot, consumer, kernelEventBufferSize)
		if err != nil {
			return nil, err
		}
		if er != nil {
			if err := uapi.GetLineEvent(chip.fd(), er); err != nil {
				return nil, err
			}
			fd = uintptr(er.Fd)
		} else {
			if err := uapi.GetLineHandle(chip.fd(), hr); err != nil {
				return nil, err
			}
			fd = uintptr(hr.Fd)
		}
	} else {
		lr, err := toLineRequestV2(offsets, snapshot, consumer, kernelEventBufferSize)
		if err != nil {
			return nil, err
		}
		if err := uapi.GetLine(chip.fd(), &lr); err != nil {
			return nil, err
		}
		fd = uintptr(lr.Fd)
	}

	indexOf := make(map[int]int, len(offsets))
	for i, o := range offsets {
		indexOf[o] = i
	}
	return &Request{
		chip:                chip,
		offsets:             offsets,
		indexOf:             indexOf,
		fd:                  fd,
		abi:                 abi,
		userEventBufferSize: userEventBufferSize,
		cfg:                 snapshot,
	}, nil
}

// Offsets returns the ordered line offsets held by this request.
func (r *Request) Offsets() []int {
	out := make([]int, len(r.offsets))
	copy(out, r.offsets)
	return out
}

func (r *Request) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Close releases the request, returning the lines to the kernel's pool of
// available lines.
func (r *Request) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	unix.Close(int(r.fd))
	return r.chip.Close()
}

func (r *Request) readValues(targets []int) ([]Value, error) {
	if r.abi == ABIVersionV1 {
		var hd uapi.HandleData
		if err := uapi.GetLineValues(r.fd, &hd); err != nil {
			return nil, err
		}
		out := make([]Value, len(targets))
		for i, o := range targets {
			out[i] = ValueFromInt(int(hd[r.indexOf[o]]))
		}
		return out, nil
	}
	var mask uapi.LineBitmap
	for _, o := range targets {
		mask = mask.Set(r.indexOf[o], 1)
	}
	lv := uapi.LineValues{Mask: mask}
	if err := uapi.GetLineValuesV2(r.fd, &lv); err != nil {
		return nil, err
	}
	out := make([]Value, len(targets))
	for i, o := range targets {
		out[i] = ValueFromInt(lv.Get(r.indexOf[o]))
	}
	return out, nil
}

// Values reads the values of the requested lines into out. If out is empty,
// all requested offsets are read and populated. Otherwise only entries
// already present in out, and that name requested offsets, are refreshed;
// other keys are left untouched.
func (r *Request) Values(out map[int]Value) error {
	if r.isClosed() {
		return ErrClosed
	}
	targets := r.offsets
	if len(out) != 0 {
		targets = nil
		for _, o := range r.offsets {
			if _, ok := out[o]; ok {
				targets = append(targets, o)
			}
		}
	}
	if len(targets) == 0 {
		return nil
	}
	vals, err := r.readValues(targets)
	if err != nil {
		return err
	}
	for i, o := range targets {
		out[o] = vals[i]
	}
	return nil
}

// Value returns the current value of a single requested offset.
func (r *Request) Value(offset int) (Value, error) {
	if r.isClosed() {
		return Inactive, ErrClosed
	}
	if _, ok := r.indexOf[offset]; !ok {
		return Inactive, ErrNotRequested
	}
	vals, err := r.readValues([]int{offset})
	if err != nil {
		return Inactive, err
	}
	return vals[0], nil
}

// SetValues applies the given offset->value entries. Entries whose offset
// is not part of the request are ignored.
//
// On uAPI v1 the kernel writes a value for every requested line in one
// call, so a value must be supplied for every requested offset;
// ErrV1RequiresAllLines otherwise. On v2 at least one requested offset must
// be present; ErrNoLinesSelected otherwise.
func (r *Request) SetValues(in map[int]Value) error {
	if r.isClosed() {
		return ErrClosed
	}
	if r.abi == ABIVersionV1 {
		var hd uapi.HandleData
		for _, o := range r.offsets {
			v, ok := in[o]
			if !ok {
				return ErrV1RequiresAllLines
			}
			hd[r.indexOf[o]] = uint8(v.Int())
		}
		return uapi.SetLineValues(r.fd, hd)
	}
	var mask, bits uapi.LineBitmap
	for o, v := range in {
		idx, ok := r.indexOf[o]
		if !ok {
			continue
		}
		mask = mask.Set(idx, 1)
		if v == Active {
			bits = bits.Set(idx, 1)
		}
	}
	if mask == 0 {
		return ErrNoLinesSelected
	}
	return uapi.SetLineValuesV2(r.fd, uapi.LineValues{Bits: bits, Mask: mask})
}

// SetValue is a convenience wrapper for setting a single requested offset.
func (r *Request) SetValue(offset int, v Value) error {
	return r.SetValues(map[int]Value{offset: v})
}

func requestHasEdges(offsets []int, cfg *LineConfig) bool {
	for _, o := range offsets {
		if cfg.LineConfig(o).EdgeDetection != EdgeNone {
			return true
		}
	}
	return false
}

// Reconfigure overlays newCfg onto the request's current config (§4.C),
// translates the composite for the active ABI, issues the reconfigure
// ioctl, and only on success swaps in the composite as the cached config.
//
// On v1 the reconfigure ioctl cannot add or remove edge detection;
// ErrV1NoEdgeReconfig is returned if either the current or the new config
// has edges enabled.
func (r *Request) Reconfigure(newCfg *LineConfig) error {
	if r.isClosed() {
		return ErrClosed
	}
	r.mu.RLock()
	composite := r.cfg.Overlay(newCfg)
	current := r.cfg
	r.mu.RUnlock()

	if r.abi == ABIVersionV1 {
		if requestHasEdges(r.offsets, current) || requestHasEdges(r.offsets, composite) {
			return ErrV1NoEdgeReconfig
		}
		hc, err := toHandleConfigV1(r.offsets, composite)
		if err != nil {
			return err
		}
		if err := uapi.SetLineConfig(r.fd, &hc); err != nil {
			return err
		}
	} else {
		cfg, err := packV2(r.offsets, composite)
		if err != nil {
			return err
		}
		if err := uapi.SetLineConfigV2(r.fd, &cfg); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.cfg = composite
	r.mu.Unlock()
	return nil
}

// Config returns a snapshot of the request's cached config.
func (r *Request) Config() *LineConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Overlay(nil)
}

// LineConfig returns the cached effective settings for offset.
func (r *Request) LineConfig(offset int) LineSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.LineConfig(offset)
}

// EdgeEventSize returns the number of bytes a single edge event occupies on
// the wire for the request's active ABI.
func (r *Request) EdgeEventSize() int {
	if r.abi == ABIVersionV1 {
		return int(unsafe.Sizeof(uapi.EventData{}))
	}
	return int(unsafe.Sizeof(uapi.LineEvent{}))
}

// HasEdgeEvent reports whether an edge event is ready to read without
// blocking.
func (r *Request) HasEdgeEvent() (bool, error) {
	return pollReadable(r.fd, 0)
}

// WaitEdgeEvent blocks up to timeout for an edge event to become ready,
// returning false on timeout.
func (r *Request) WaitEdgeEvent(timeout time.Duration) (bool, error) {
	return pollReadable(r.fd, timeout)
}

// wrapShortRead translates a uapi.ErrShortRead, as returned by the blocking
// single-record uapi readers, into the ABI-neutral ErrShortRead naming the
// record that was short.
func wrapShortRead(err error, record string) error {
	if sr, ok := err.(uapi.ErrShortRead); ok {
		return ErrShortRead{Record: record, Expected: sr.Expected, Actual: sr.Actual}
	}
	return err
}

// ReadEdgeEvent reads and decodes exactly one edge event. This blocks until
// an event is available.
func (r *Request) ReadEdgeEvent() (EdgeEvent, error) {
	if r.abi == ABIVersionV1 {
		ed, err := uapi.ReadEvent(r.fd)
		if err != nil {
			return EdgeEvent{}, wrapShortRead(err, "edge event")
		}
		return edgeEventFromV1(ed, r.offsets[0])
	}
	le, err := uapi.ReadLineEvent(r.fd)
	if err != nil {
		return EdgeEvent{}, wrapShortRead(err, "edge event")
	}
	return edgeEventFromV2(le)
}

// ReadEdgeEventsIntoSlice reads as many whole events as fit into buf,
// returning the number of bytes written. buf must be at least
// EdgeEventSize() long. ErrShortRead is returned if the read yielded a
// partial trailing record.
func (r *Request) ReadEdgeEventsIntoSlice(buf []byte) (int, error) {
	size := r.EdgeEventSize()
	n := (len(buf) / size) * size
	if n == 0 {
		return 0, nil
	}
	read, err := unix.Read(int(r.fd), buf[:n])
	if err != nil {
		return read, err
	}
	if read%size != 0 {
		return read, ErrShortRead{Record: "edge event", Expected: size, Actual: read % size}
	}
	return read, nil
}

// EdgeEventFromSlice decodes a single edge event from the front of buf,
// which must already contain at least EdgeEventSize() bytes read from this
// request.
func (r *Request) EdgeEventFromSlice(buf []byte) (EdgeEvent, error) {
	size := r.EdgeEventSize()
	if len(buf) < size {
		return EdgeEvent{}, ErrShortRead{Record: "edge event", Expected: size, Actual: len(buf)}
	}
	if r.abi == ABIVersionV1 {
		var ed uapi.EventData
		if err := binary.Read(bytes.NewReader(buf), binary.NativeEndian, &ed); err != nil {
			return EdgeEvent{}, err
		}
		return edgeEventFromV1(ed, r.offsets[0])
	}
	var le uapi.LineEvent
	if err := binary.Read(bytes.NewReader(buf), binary.NativeEndian, &le); err != nil {
		return EdgeEvent{}, err
	}
	return edgeEventFromV2(le)
}

// NewEdgeEventBuffer builds a user-space buffer over this request holding
// up to capacity events, doing a bulk kernel read whenever it is drained and
// handing out decoded events one at a time. A capacity below 1 is replaced
// by the builder's WithEventBufferSize hint, and by 1 if that is also below 1.
func (r *Request) NewEdgeEventBuffer(capacity int) *EdgeEventBuffer {
	if capacity < 1 {
		capacity = r.userEventBufferSize
	}
	if capacity < 1 {
		capacity = 1
	}
	return newEdgeEventBuffer(r, capacity)
}
