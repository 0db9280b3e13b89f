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

func TestLineFlagsV2RoundTrip(t *testing.T) {
	patterns := []struct {
		name string
		in   LineSettings
	}{
		{"input", LineSettings{Direction: DirectionInput}},
		{"output", LineSettings{Direction: DirectionOutput, Drive: DrivePushPull}},
		{"activeLow", LineSettings{Direction: DirectionInput, ActiveLow: true}},
		{"pullUp", LineSettings{Direction: DirectionInput, Bias: BiasPullUp}},
		{"pullDown", LineSettings{Direction: DirectionInput, Bias: BiasPullDown}},
		{"biasDisabled", LineSettings{Direction: DirectionInput, Bias: BiasDisabled}},
		{"openDrain", LineSettings{Direction: DirectionOutput, Drive: DriveOpenDrain}},
		{"openSource", LineSettings{Direction: DirectionOutput, Drive: DriveOpenSource}},
		{"risingEdge", LineSettings{Direction: DirectionInput, EdgeDetection: EdgeRising, EventClock: EventClockMonotonic}},
		{"fallingEdge", LineSettings{Direction: DirectionInput, EdgeDetection: EdgeFalling, EventClock: EventClockMonotonic}},
		{"bothEdges", LineSettings{Direction: DirectionInput, EdgeDetection: EdgeBoth, EventClock: EventClockMonotonic}},
		{"realtimeClock", LineSettings{Direction: DirectionInput, EdgeDetection: EdgeBoth, EventClock: EventClockRealtime}},
		{"hteClock", LineSettings{Direction: DirectionInput, EdgeDetection: EdgeBoth, EventClock: EventClockHTE}},
	}
	for _, p := range patterns {
		p := p
		t.Run(p.name, func(t *testing.T) {
			f := lineFlagsV2(p.in)
			got := settingsFromFlagsV2(f)
			assert.Equal(t, p.in.Direction, got.Direction)
			assert.Equal(t, p.in.ActiveLow, got.ActiveLow)
			assert.Equal(t, p.in.Bias, got.Bias)
			assert.Equal(t, p.in.EdgeDetection, got.EdgeDetection)
			assert.Equal(t, p.in.EventClock, got.EventClock)
			if p.in.Direction == DirectionOutput {
				assert.Equal(t, p.in.Drive, got.Drive)
			}
		})
	}
}

func TestPackV2BaseIsMostCommonFlagWord(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{0, 1, 2, 3}).AsInput()
	lc.WithLine(3).WithBias(BiasPullUp)

	cfg, err := packV2([]int{0, 1, 2, 3}, lc)
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagV2Input, cfg.Flags)
	require.EqualValues(t, 1, cfg.NumAttrs)
	assert.Equal(t, uapi.NewLineBits(3), cfg.Attrs[0].Mask)
}

func TestPackV2TiesBreakByFirstOccurrence(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLine(0).AsInput()
	lc.WithLine(1).AsOutput(Inactive)

	cfg, err := packV2([]int{0, 1}, lc)
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagV2Input, cfg.Flags)
	require.EqualValues(t, 1, cfg.NumAttrs)
}

func TestPackV2OutputValuesAttributeOmittedWhenAllZero(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{0, 1}).AsOutput(Inactive)

	cfg, err := packV2([]int{0, 1}, lc)
	require.Nil(t, err)
	assert.EqualValues(t, 0, cfg.NumAttrs)
}

func TestPackV2OutputValuesAttributePresentWhenAnyActive(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{0, 1}).AsOutput(Inactive)
	lc.WithLine(1).WithValue(Active)

	cfg, err := packV2([]int{0, 1}, lc)
	require.Nil(t, err)
	require.EqualValues(t, 1, cfg.NumAttrs)
	assert.Equal(t, uapi.LineAttributeIDOutputValues, cfg.Attrs[0].Attr.ID)
	var ov uapi.OutputValues
	ov.Decode(cfg.Attrs[0].Attr)
	assert.Equal(t, 1, uapi.LineBitmap(ov).Get(1))
	assert.Equal(t, 0, uapi.LineBitmap(ov).Get(0))
}

func TestPackV2DebounceGroupedAndRoundedUp(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{0, 1, 2}).AsInput()
	lc.WithLine(0).WithDebouncePeriod(10*time.Millisecond + 500*time.Nanosecond)
	lc.WithLine(1).WithDebouncePeriod(10*time.Millisecond + 500*time.Nanosecond)
	lc.WithLine(2).WithDebouncePeriod(5 * time.Millisecond)

	cfg, err := packV2([]int{0, 1, 2}, lc)
	require.Nil(t, err)
	require.EqualValues(t, 2, cfg.NumAttrs)

	var found10ms, found5ms bool
	for i := 0; i < int(cfg.NumAttrs); i++ {
		a := cfg.Attrs[i]
		require.Equal(t, uapi.LineAttributeIDDebounce, a.Attr.ID)
		var d uapi.DebouncePeriod
		d.Decode(a.Attr)
		switch time.Duration(d) {
		case 10*time.Millisecond + time.Microsecond:
			found10ms = true
			assert.Equal(t, uapi.NewLineBits(0, 1), a.Mask)
		case 5 * time.Millisecond:
			found5ms = true
			assert.Equal(t, uapi.NewLineBits(2), a.Mask)
		}
	}
	assert.True(t, found10ms)
	assert.True(t, found5ms)
}

func TestPackV2AttributeOverflow(t *testing.T) {
	lc := NewLineConfig()
	offsets := make([]int, 0, 12)
	for i := 0; i < 12; i++ {
		offsets = append(offsets, i)
		lc.WithLine(i).AsInput().WithDebouncePeriod(time.Duration(i+1) * time.Millisecond)
	}

	_, err := packV2(offsets, lc)
	require.NotNil(t, err)
	capErr, ok := err.(ErrAbiCapacityExceeded)
	require.True(t, ok)
	assert.Equal(t, 10, capErr.Available)
	assert.True(t, capErr.Attempted > 10)
}

func TestToLineRequestV2TooManyLines(t *testing.T) {
	lc := NewLineConfig()
	offsets := make([]int, uapi.LinesMax+1)
	for i := range offsets {
		offsets[i] = i
		lc.WithLine(i).AsInput()
	}
	_, err := toLineRequestV2(offsets, lc, "test", 0)
	assert.Equal(t, ErrTooManyLines, err)
}

func TestToLineRequestV2Fields(t *testing.T) {
	lc := NewLineConfig()
	lc.WithLines([]int{2, 5}).AsInput()

	lr, err := toLineRequestV2([]int{2, 5}, lc, "myconsumer", 32)
	require.Nil(t, err)
	assert.EqualValues(t, 2, lr.Lines)
	assert.EqualValues(t, 2, lr.Offsets[0])
	assert.EqualValues(t, 5, lr.Offsets[1])
	assert.EqualValues(t, 32, lr.EventBufferSize)
	assert.Equal(t, "myconsumer", uapi.BytesToString(lr.Consumer[:]))
}

func TestLineInfoFromV2RejectsUnknownAttribute(t *testing.T) {
	li := uapi.LineInfoV2{
		Offset:   1,
		Flags:    uapi.LineFlagV2Input,
		NumAttrs: 1,
	}
	li.Attrs[0] = uapi.LineConfigAttribute{}.Attr
	li.Attrs[0].ID = 99

	_, err := lineInfoFromV2(li)
	require.NotNil(t, err)
	_, ok := err.(ErrProtocol)
	assert.True(t, ok)
}

func TestLineInfoFromV2DecodesDebounce(t *testing.T) {
	var d uapi.DebouncePeriod = uapi.DebouncePeriod(5 * time.Millisecond)
	li := uapi.LineInfoV2{
		Offset:   1,
		Flags:    uapi.LineFlagV2Input,
		NumAttrs: 1,
	}
	li.Attrs[0] = d.Encode()

	info, err := lineInfoFromV2(li)
	require.Nil(t, err)
	assert.Equal(t, 5*time.Millisecond, info.Config.DebouncePeriod)
}

func TestEdgeEventFromV2(t *testing.T) {
	le := uapi.LineEvent{
		Timestamp: 12345,
		ID:        uapi.LineEventRisingEdge,
		Offset:    7,
		Seqno:     2,
		LineSeqno: 1,
	}
	ev, err := edgeEventFromV2(le)
	require.Nil(t, err)
	assert.Equal(t, RisingEdge, ev.Type)
	assert.Equal(t, 7, ev.Offset)
	assert.EqualValues(t, 2, ev.Seqno)
	assert.EqualValues(t, 1, ev.LineSeqno)

	le.ID = uapi.LineEventFallingEdge
	ev, err = edgeEventFromV2(le)
	require.Nil(t, err)
	assert.Equal(t, FallingEdge, ev.Type)

	le.ID = 0
	_, err = edgeEventFromV2(le)
	assert.NotNil(t, err)
}

func TestInfoChangeTypeFromUAPI(t *testing.T) {
	assert.Equal(t, LineRequested, infoChangeTypeFromUAPI(uapi.ChangeRequested))
	assert.Equal(t, LineReleased, infoChangeTypeFromUAPI(uapi.ChangeReleased))
	assert.Equal(t, LineReconfigured, infoChangeTypeFromUAPI(uapi.ChangeReconfigured))
}
