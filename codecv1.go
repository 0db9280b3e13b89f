// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"time"

	"github.com/kvlab/gpiocdev/uapi"
)

// handleFlagsV1 maps a uniform line settings value to the v1 handle-request
// flag word.
func handleFlagsV1(s LineSettings) uapi.HandleFlag {
	var f uapi.HandleFlag
	switch s.Direction {
	case DirectionInput:
		f |= uapi.HandleRequestInput
	case DirectionOutput:
		f |= uapi.HandleRequestOutput
	}
	if s.ActiveLow {
		f |= uapi.HandleRequestActiveLow
	}
	switch s.Drive {
	case DriveOpenDrain:
		f |= uapi.HandleRequestOpenDrain
	case DriveOpenSource:
		f |= uapi.HandleRequestOpenSource
	}
	switch s.Bias {
	case BiasPullUp:
		f |= uapi.HandleRequestPullUp
	case BiasPullDown:
		f |= uapi.HandleRequestPullDown
	case BiasDisabled:
		f |= uapi.HandleRequestBiasDisable
	}
	return f
}

// settingsFromHandleFlagsV1 is the inverse of handleFlagsV1.
func settingsFromHandleFlagsV1(f uapi.HandleFlag) LineSettings {
	var s LineSettings
	s.ActiveLow = f.IsActiveLow()
	switch {
	case f.IsInput():
		s.Direction = DirectionInput
	case f.IsOutput():
		s.Direction = DirectionOutput
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
	return s
}

// settingsFromLineFlagV1 derives settings from the flags reported in a v1
// LineInfo record (a superset of HandleFlag, including bias bits the kernel
// only started reporting via this field).
func settingsFromLineFlagV1(f uapi.LineFlag) LineSettings {
	var s LineSettings
	s.ActiveLow = f.IsActiveLow()
	if f.IsOut() {
		s.Direction = DirectionOutput
		switch {
		case f.IsOpenDrain():
			s.Drive = DriveOpenDrain
		case f.IsOpenSource():
			s.Drive = DriveOpenSource
		default:
			s.Drive = DrivePushPull
		}
	} else {
		s.Direction = DirectionInput
	}
	switch {
	case f.IsPullUp():
		s.Bias = BiasPullUp
	case f.IsPullDown():
		s.Bias = BiasPullDown
	case f.IsBiasDisable():
		s.Bias = BiasDisabled
	}
	return s
}

func eventFlagsV1(e EdgeDetection) uapi.EventFlag {
	switch e {
	case EdgeRising:
		return uapi.EventRequestRisingEdge
	case EdgeFalling:
		return uapi.EventRequestFallingEdge
	case EdgeBoth:
		return uapi.EventRequestBothEdges
	default:
		return 0
	}
}

// equivalentV1 reports whether a and b share every setting a v1 handle
// request's single shared flag word can express, ignoring Value: each line
// of a v1 HandleRequest carries its own output value in DefaultValues
// independently of the flags all lines must agree on.
func equivalentV1(a, b LineSettings) bool {
	a.Value = OutputValueUnset
	b.Value = OutputValueUnset
	return a == b
}

// packV1 translates a Line Config over offsets into either a v1
// HandleRequest (no edge detection) or a v1 EventRequest (edge detection on
// the single permitted line), per the v1 packing rules of §4.A.
func packV1(offsets []int, lc *LineConfig, consumer string, kernelEventBufferSize uint32) (*uapi.HandleRequest, *uapi.EventRequest, error) {
	if len(offsets) == 0 {
		return nil, nil, ErrNoLines
	}
	if kernelEventBufferSize != 0 {
		return nil, nil, ErrUapiIncompatibility{Feature: "kernel event buffer sizing", AbiVersion: 1}
	}

	first := lc.LineConfig(offsets[0])
	edgeCount := 0
	for _, o := range offsets {
		s := lc.LineConfig(o)
		if !equivalentV1(s, first) {
			return nil, nil, ErrV1RequiresUniformConfig
		}
		if s.EdgeDetection != EdgeNone {
			edgeCount++
		}
	}
	if first.DebouncePeriod != 0 {
		return nil, nil, ErrUapiIncompatibility{Feature: "debounce period", AbiVersion: 1}
	}
	if first.EventClock != EventClockUnset && first.EventClock != EventClockMonotonic {
		return nil, nil, ErrUapiIncompatibility{Feature: "event clock selection", AbiVersion: 1}
	}
	if edgeCount > 0 && len(offsets) > 1 {
		return nil, nil, ErrV1EdgeSingleLineOnly
	}

	if edgeCount == 1 {
		er := &uapi.EventRequest{
			Offset:      uint32(offsets[0]),
			HandleFlags: handleFlagsV1(first),
			EventFlags:  eventFlagsV1(first.EdgeDetection),
		}
		copy(er.Consumer[:], consumer)
		return nil, er, nil
	}

	hr := &uapi.HandleRequest{
		Lines: uint32(len(offsets)),
	}
	copy(hr.Consumer[:], consumer)
	hr.Flags = handleFlagsV1(first)
	for i, o := range offsets {
		hr.Offsets[i] = uint32(o)
		if first.Direction == DirectionOutput {
			if v, ok := lc.LineConfig(o).Value.Resolve(); ok && v == Active {
				hr.DefaultValues[i] = 1
			}
		}
	}
	return hr, nil, nil
}

// toHandleConfigV1 builds the v1 reconfigure payload for a handle request
// (no edge detection) from its uniform effective settings.
func toHandleConfigV1(offsets []int, lc *LineConfig) (uapi.HandleConfig, error) {
	if len(offsets) == 0 {
		return uapi.HandleConfig{}, ErrNoLines
	}
	first := lc.LineConfig(offsets[0])
	for _, o := range offsets {
		if !equivalentV1(lc.LineConfig(o), first) {
			return uapi.HandleConfig{}, ErrV1RequiresUniformConfig
		}
	}
	if first.EdgeDetection != EdgeNone {
		return uapi.HandleConfig{}, ErrV1NoEdgeReconfig
	}
	var hc uapi.HandleConfig
	hc.Flags = handleFlagsV1(first)
	for i, o := range offsets {
		if first.Direction == DirectionOutput {
			if v, ok := lc.LineConfig(o).Value.Resolve(); ok && v == Active {
				hc.DefaultValues[i] = 1
			}
		}
	}
	return hc, nil
}

// lineInfoFromV1 decodes a kernel v1 LineInfo into the ABI-neutral LineInfo.
func lineInfoFromV1(li uapi.LineInfo) LineInfo {
	return LineInfo{
		Offset:   int(li.Offset),
		Name:     uapi.BytesToString(li.Name[:]),
		Consumer: uapi.BytesToString(li.Consumer[:]),
		Used:     li.Flags.IsRequested(),
		Config:   settingsFromLineFlagV1(li.Flags),
	}
}

// edgeEventFromV1 decodes a kernel v1 EventData read from a single-line
// event request into the ABI-neutral EdgeEvent. v1 provides neither
// per-request nor per-line sequence numbers, nor the triggering offset, so
// offset is supplied from the request context and both seqnos are zero.
func edgeEventFromV1(ed uapi.EventData, offset int) (EdgeEvent, error) {
	if !ed.ID.IsValid() {
		return EdgeEvent{}, ErrProtocol{Field: "EventData.ID", Value: formatUint(uint64(ed.ID))}
	}
	t := RisingEdge
	if ed.ID == uapi.EventRequestFallingEdge {
		t = FallingEdge
	}
	return EdgeEvent{
		Timestamp: time.Duration(ed.Timestamp),
		Type:      t,
		Offset:    offset,
	}, nil
}

// infoChangeEventFromV1 decodes a kernel v1 LineInfoChangeEvent into the
// ABI-neutral InfoChangeEvent.
func infoChangeEventFromV1(lic uapi.LineInfoChangeEvent) (InfoChangeEvent, error) {
	if !lic.Type.IsValid() {
		return InfoChangeEvent{}, ErrProtocol{Field: "LineInfoChangeEvent.Type", Value: formatUint(uint64(lic.Type))}
	}
	return InfoChangeEvent{
		Info:      lineInfoFromV1(lic.Info),
		Timestamp: time.Duration(lic.Timestamp),
		Type:      infoChangeTypeFromUAPI(lic.Type),
	}, nil
}
