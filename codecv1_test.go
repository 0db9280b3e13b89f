// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"testing"
	"time"

	"github.com/kvlab/gpiocdev/uapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleFlagsV1RoundTrip(t *testing.T) {
	patterns := []struct {
		name string
		in   LineSettings
	}{
		{"input", LineSettings{Direction: DirectionInput}},
		{"output", LineSettings{Direction: DirectionOutput, Drive: DrivePushPull}},
		{"activeLow", LineSettings{Direction: DirectionInput, ActiveLow: true}},
		{"openDrain", LineSettings{Direction: DirectionOutput, Drive: DriveOpenDrain}},
		{"openSource", LineSettings{Direction: DirectionOutput, Drive: DriveOpenSource}},
	}
	for _, p := range patterns {
		p := p
		t.Run(p.name, func(t *testing.T) {
			f := handleFlagsV1(p.in)
			got := settingsFromHandleFlagsV1(f)
			assert.Equal(t, p.in.Direction, got.Direction)
			assert.Equal(t, p.in.ActiveLow, got.ActiveLow)
			if p.in.Direction == DirectionOutput {
				assert.Equal(t, p.in.Drive, got.Drive)
			}
		})
	}
}

func TestSettingsFromLineFlagV1Bias(t *testing.T) {
	patterns := []struct {
		name string
		f    uapi.LineFlag
		want Bias
	}{
		{"pullUp", uapi.LineFlagPullUp, BiasPullUp},
		{"pullDown", uapi.LineFlagPullDown, BiasPullDown},
		{"biasDisable", uapi.LineFlagBiasDisable, BiasDisabled},
	}
	for _, p := range patterns {
		p := p
		t.Run(p.name, func(t *testing.T) {
			s := settingsFromLineFlagV1(p.f)
			assert.Equal(t, p.want, s.Bias)
		})
	}
}

func TestEventFlagsV1(t *testing.T) {
	assert.Equal(t, uapi.EventRequestRisingEdge, eventFlagsV1(EdgeRising))
	assert.Equal(t, uapi.EventRequestFallingEdge, eventFlagsV1(EdgeFalling))
	assert.Equal(t, uapi.EventRequestBothEdges, eventFlagsV1(EdgeBoth))
	assert.EqualValues(t, 0, eventFlagsV1(EdgeNone))
}

func TestPackV1RejectsNonUniformConfig(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).AsInput()
	lc.WithLine(1).AsInput().WithBias(BiasPullUp)

	_, _, err := packV1([]int{0, 1}, lc, "test", 0)
	assert.Equal(t, ErrV1RequiresUniformConfig, err)
}

func TestPackV1RejectsKernelEventBufferSizing(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).AsInput()
	_, _, err := packV1([]int{0}, lc, "test", 16)
	assert.Equal(t, ErrUapiIncompatibility{Feature: "kernel event buffer sizing", AbiVersion: 1}, err)
}

func TestPackV1RejectsDebounce(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).AsInput().WithDebouncePeriod(time.Millisecond)
	_, _, err := packV1([]int{0}, lc, "test", 0)
	assert.Equal(t, ErrUapiIncompatibility{Feature: "debounce period", AbiVersion: 1}, err)
}

func TestPackV1RejectsEventClockSelection(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).WithEdgeDetection(EdgeRising).WithEventClock(EventClockRealtime)
	_, _, err := packV1([]int{0}, lc, "test", 0)
	assert.Equal(t, ErrUapiIncompatibility{Feature: "event clock selection", AbiVersion: 1}, err)
}

func TestPackV1RejectsMultiLineEdgeDetection(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{0, 1}).WithEdgeDetection(EdgeRising)
	_, _, err := packV1([]int{0, 1}, lc, "test", 0)
	assert.Equal(t, ErrV1EdgeSingleLineOnly, err)
}

func TestPackV1SingleLineEdgeDetectionProducesEventRequest(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(3).WithEdgeDetection(EdgeBoth)
	hr, er, err := packV1([]int{3}, lc, "test", 0)
	require.Nil(t, err)
	require.Nil(t, hr)
	require.NotNil(t, er)
	assert.EqualValues(t, 3, er.Offset)
	assert.Equal(t, uapi.EventRequestBothEdges, er.EventFlags)
}

func TestPackV1PlainRequestProducesHandleRequest(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{0, 1}).AsOutput(Inactive)
	lc.WithLine(1).WithValue(Active)
	hr, er, err := packV1([]int{0, 1}, lc, "test", 0)
	require.Nil(t, err)
	require.Nil(t, er)
	require.NotNil(t, hr)
	assert.EqualValues(t, 2, hr.Lines)
	assert.EqualValues(t, 0, hr.DefaultValues[0])
	assert.EqualValues(t, 1, hr.DefaultValues[1])
}

func TestToHandleConfigV1RejectsEdgeDetection(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).WithEdgeDetection(EdgeRising)
	_, err := toHandleConfigV1([]int{0}, lc)
	assert.Equal(t, ErrV1NoEdgeReconfig, err)
}

func TestToHandleConfigV1RejectsNonUniformConfig(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).AsOutput(Inactive)
	lc.WithLine(1).AsInput()
	_, err := toHandleConfigV1([]int{0, 1}, lc)
	assert.Equal(t, ErrV1RequiresUniformConfig, err)
}

func TestEdgeEventFromV1(t *testing.T) {
	ed := uapi.EventData{Timestamp: 999, ID: uapi.EventRequestRisingEdge}
	ev, err := edgeEventFromV1(ed, 4)
	require.Nil(t, err)
	assert.Equal(t, RisingEdge, ev.Type)
	assert.Equal(t, 4, ev.Offset)
	assert.EqualValues(t, 0, ev.Seqno)

	ed.ID = uapi.EventRequestFallingEdge
	ev, err = edgeEventFromV1(ed, 4)
	require.Nil(t, err)
	assert.Equal(t, FallingEdge, ev.Type)

	ed.ID = 0
	_, err = edgeEventFromV1(ed, 4)
	assert.NotNil(t, err)
}

func TestLineInfoFromV1(t *testing.T) {
	li := uapi.LineInfo{
		Offset: 2,
		Flags:  uapi.LineFlagRequested | uapi.LineFlagIsOut,
	}
	copy(li.Name[:], "GPIO2")
	copy(li.Consumer[:], "test")

	info := lineInfoFromV1(li)
	assert.Equal(t, 2, info.Offset)
	assert.Equal(t, "GPIO2", info.Name)
	assert.Equal(t, "test", info.Consumer)
	assert.True(t, info.Used)
	assert.Equal(t, DirectionOutput, info.Config.Direction)
}
