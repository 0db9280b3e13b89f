// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"time"

	"github.com/kvlab/gpiocdev/uapi"
	"github.com/pkg/errors"
)

// lineFlagsV2 maps a line's effective settings to the v2 wire flag word.
func lineFlagsV2(s LineSettings) uapi.LineFlagV2 {
	var f uapi.LineFlagV2
	if s.ActiveLow {
		f |= uapi.LineFlagV2ActiveLow
	}
	switch s.Direction {
	case DirectionInput:
		f |= uapi.LineFlagV2Input
	case DirectionOutput:
		f |= uapi.LineFlagV2Output
	}
	switch s.Bias {
	case BiasPullUp:
		f |= uapi.LineFlagV2BiasPullUp
	case BiasPullDown:
		f |= uapi.LineFlagV2BiasPullDown
	case BiasDisabled:
		f |= uapi.LineFlagV2BiasDisabled
	}
	switch s.Drive {
	case DriveOpenDrain:
		f |= uapi.LineFlagV2OpenDrain
	case DriveOpenSource:
		f |= uapi.LineFlagV2OpenSource
	}
	if s.EdgeDetection&EdgeRising != 0 {
		f |= uapi.LineFlagV2EdgeRising
	}
	if s.EdgeDetection&EdgeFalling != 0 {
		f |= uapi.LineFlagV2EdgeFalling
	}
	switch s.EventClock {
	case EventClockRealtime:
		f |= uapi.LineFlagV2EventClockRealtime
	case EventClockHTE:
		f |= uapi.LineFlagV2EventClockHTE
	}
	return f
}

// settingsFromFlagsV2 is the inverse of lineFlagsV2: it derives the
// effective settings the kernel is actually applying from its flag word.
func settingsFromFlagsV2(f uapi.LineFlagV2) LineSettings {
	var s LineSettings
	s.ActiveLow = f.IsActiveLow()
	switch {
	case f.IsInput():
		s.Direction = DirectionInput
	case f.IsOutput():
		s.Direction = DirectionOutput
	}
	switch {
	case f.IsBiasPullUp():
		s.Bias = BiasPullUp
	case f.IsBiasPullDown():
		s.Bias = BiasPullDown
	case f.IsBiasDisabled():
		s.Bias = BiasDisabled
	}
	if s.Direction == DirectionOutput {
		switch {
		case f.IsOpenDrain():
			s.Drive = DriveOpenDrain
		case f.IsOpenSource():
			s.Drive = DriveOpenSource
		default:
			s.Drive = DrivePushPull
		}
	}
	switch {
	case f.IsBothEdges():
		s.EdgeDetection = EdgeBoth
	case f.IsRisingEdge():
		s.EdgeDetection = EdgeRising
	case f.IsFallingEdge():
		s.EdgeDetection = EdgeFalling
	}
	switch {
	case f&uapi.LineFlagV2EventClockHTE != 0:
		s.EventClock = EventClockHTE
	case f.HasRealtimeEventClock():
		s.EventClock = EventClockRealtime
	case s.EdgeDetection != EdgeNone:
		s.EventClock = EventClockMonotonic
	}
	return s
}

// packV2 builds the v2 attribute table for offsets (already sorted) per the
// packing rules of §4.A: the most common flag word becomes the base, other
// flag words and debounce groupings become attribute slots, and a single
// output-values attribute carries non-zero initial values.
func packV2(offsets []int, lc *LineConfig) (uapi.LineConfig, error) {
	var cfg uapi.LineConfig

	groupOrder := make([]uapi.LineFlagV2, 0, len(offsets))
	groupIndices := map[uapi.LineFlagV2][]int{}
	for i, o := range offsets {
		f := lineFlagsV2(lc.LineConfig(o))
		if _, ok := groupIndices[f]; !ok {
			groupOrder = append(groupOrder, f)
		}
		groupIndices[f] = append(groupIndices[f], i)
	}

	base := groupOrder[0]
	for _, f := range groupOrder[1:] {
		if len(groupIndices[f]) > len(groupIndices[base]) {
			base = f
		}
	}
	cfg.Flags = base

	var attrs []uapi.LineConfigAttribute
	for _, f := range groupOrder {
		if f == base {
			continue
		}
		attrs = append(attrs, uapi.LineConfigAttribute{
			Attr: f.Encode(),
			Mask: uapi.NewLineBits(groupIndices[f]...),
		})
	}

	var outMask, outBits uapi.LineBitmap
	haveOutput := false
	for i, o := range offsets {
		s := lc.LineConfig(o)
		if s.Direction != DirectionOutput {
			continue
		}
		haveOutput = true
		outMask = outMask.Set(i, 1)
		if v, ok := s.Value.Resolve(); ok && v == Active {
			outBits = outBits.Set(i, 1)
		}
	}
	if haveOutput && outBits != 0 {
		attrs = append(attrs, uapi.LineConfigAttribute{
			Attr: uapi.OutputValues(outBits).Encode(),
			Mask: outMask,
		})
	}

	// Lines are grouped by the debounce period they will actually encode to
	// on the wire (rounded up to a whole microsecond), not by the raw
	// requested duration, so that two periods differing only below
	// microsecond resolution share a single attribute slot.
	debounceOrder := make([]time.Duration, 0)
	debounceIndices := map[time.Duration][]int{}
	for i, o := range offsets {
		d := lc.LineConfig(o).DebouncePeriod
		if d <= 0 {
			continue
		}
		rounded := d + 999*time.Nanosecond
		rounded -= rounded % (1000 * time.Nanosecond)
		if _, ok := debounceIndices[rounded]; !ok {
			debounceOrder = append(debounceOrder, rounded)
		}
		debounceIndices[rounded] = append(debounceIndices[rounded], i)
	}
	for _, d := range debounceOrder {
		attrs = append(attrs, uapi.LineConfigAttribute{
			Attr: uapi.DebouncePeriod(d).Encode(),
			Mask: uapi.NewLineBits(debounceIndices[d]...),
		})
	}

	if len(attrs) > 10 {
		return uapi.LineConfig{}, ErrAbiCapacityExceeded{Attempted: len(attrs), Available: 10}
	}
	for _, a := range attrs {
		cfg.AddAttribute(a)
	}
	return cfg, nil
}

// toLineRequestV2 builds the complete v2 line request payload for offsets.
func toLineRequestV2(offsets []int, lc *LineConfig, consumer string, kernelEventBufferSize uint32) (uapi.LineRequest, error) {
	if len(offsets) > uapi.LinesMax {
		return uapi.LineRequest{}, ErrTooManyLines
	}
	cfg, err := packV2(offsets, lc)
	if err != nil {
		return uapi.LineRequest{}, err
	}
	var lr uapi.LineRequest
	for i, o := range offsets {
		lr.Offsets[i] = uint32(o)
	}
	lr.Lines = uint32(len(offsets))
	lr.Config = cfg
	lr.EventBufferSize = kernelEventBufferSize
	copy(lr.Consumer[:], consumer)
	return lr, nil
}

// lineInfoFromV2 decodes a kernel LineInfoV2 into the ABI-neutral LineInfo,
// validating every attribute kind the kernel reports.
func lineInfoFromV2(li uapi.LineInfoV2) (LineInfo, error) {
	info := LineInfo{
		Offset:   int(li.Offset),
		Name:     uapi.BytesToString(li.Name[:]),
		Consumer: uapi.BytesToString(li.Consumer[:]),
		Used:     li.Flags.IsUsed(),
		Config:   settingsFromFlagsV2(li.Flags),
	}
	for i := 0; i < int(li.NumAttrs) && i < len(li.Attrs); i++ {
		attr := li.Attrs[i]
		if !attr.ID.IsValid() {
			return LineInfo{}, ErrProtocol{Field: "LineAttribute.ID", Value: formatUint(uint64(attr.ID))}
		}
		if attr.ID == uapi.LineAttributeIDDebounce {
			var d uapi.DebouncePeriod
			d.Decode(attr)
			info.Config.DebouncePeriod = time.Duration(d)
		}
	}
	return info, nil
}

// edgeEventFromV2 decodes a kernel LineEvent into the ABI-neutral EdgeEvent.
func edgeEventFromV2(le uapi.LineEvent) (EdgeEvent, error) {
	if !le.ID.IsValid() {
		return EdgeEvent{}, ErrProtocol{Field: "LineEvent.ID", Value: formatUint(uint64(le.ID))}
	}
	t := RisingEdge
	if le.ID == uapi.LineEventFallingEdge {
		t = FallingEdge
	}
	return EdgeEvent{
		Timestamp: time.Duration(le.Timestamp),
		Type:      t,
		Offset:    int(le.Offset),
		Seqno:     le.Seqno,
		LineSeqno: le.LineSeqno,
	}, nil
}

// infoChangeEventFromV2 decodes a kernel LineInfoChangedV2 into the
// ABI-neutral InfoChangeEvent.
func infoChangeEventFromV2(lic uapi.LineInfoChangedV2) (InfoChangeEvent, error) {
	if !lic.Type.IsValid() {
		return InfoChangeEvent{}, ErrProtocol{Field: "LineInfoChanged.Type", Value: formatUint(uint64(lic.Type))}
	}
	info, err := lineInfoFromV2(lic.Info)
	if err != nil {
		return InfoChangeEvent{}, errors.Wrap(err, "decoding changed line info")
	}
	return InfoChangeEvent{
		Info:      info,
		Timestamp: time.Duration(lic.Timestamp),
		Type:      infoChangeTypeFromUAPI(lic.Type),
	}, nil
}

func infoChangeTypeFromUAPI(t uapi.ChangeType) InfoChangeType {
	switch t {
	case uapi.ChangeReleased:
		return LineReleased
	case uapi.ChangeReconfigured:
		return LineReconfigured
	default:
		return LineRequested
	}
}
