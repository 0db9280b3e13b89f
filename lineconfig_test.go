// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev_test

import (
	"testing"
	"time"

	"github.com/kvlab/gpiocdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineConfigWithLineSeedsFromBase(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.AsInput().WithBias(gpiocdev.BiasPullUp)
	lc.WithLine(3)
	s := lc.LineConfig(3)
	assert.Equal(t, gpiocdev.DirectionInput, s.Direction)
	assert.Equal(t, gpiocdev.BiasPullUp, s.Bias)
}

func TestLineConfigUnknownOffsetReturnsBase(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.AsOutput(gpiocdev.Active)
	s := lc.LineConfig(99)
	assert.Equal(t, gpiocdev.DirectionOutput, s.Direction)
}

func TestLineConfigSelectionScopesMutators(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLines([]int{1, 2, 3}).AsInput()
	lc.WithLine(2).WithBias(gpiocdev.BiasPullDown)

	assert.Equal(t, gpiocdev.BiasUnset, lc.LineConfig(1).Bias)
	assert.Equal(t, gpiocdev.BiasPullDown, lc.LineConfig(2).Bias)
	assert.Equal(t, gpiocdev.BiasUnset, lc.LineConfig(3).Bias)
}

func TestLineConfigWithLinesDedups(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLines([]int{1, 1, 2, 2, 3})
	require.Equal(t, []int{1, 2, 3}, lc.Lines())
	assert.Equal(t, 3, lc.NumLines())
}

func TestLineConfigWithoutLines(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLines([]int{1, 2, 3})
	lc.WithoutLine(2)
	assert.Equal(t, []int{1, 3}, lc.Lines())
}

func TestLineConfigWithOutputLines(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithOutputLines(map[int]gpiocdev.Value{5: gpiocdev.Active, 6: gpiocdev.Inactive})
	v5, ok := lc.LineConfig(5).Value.Resolve()
	require.True(t, ok)
	assert.Equal(t, gpiocdev.Active, v5)
	v6, ok := lc.LineConfig(6).Value.Resolve()
	require.True(t, ok)
	assert.Equal(t, gpiocdev.Inactive, v6)
}

func TestLineConfigSanitizeClearsOutputOnlyOptionsOnInput(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0).AsOutput(gpiocdev.Active).WithDrive(gpiocdev.DriveOpenDrain)
	lc.AsInput()
	s := lc.LineConfig(0)
	assert.Equal(t, gpiocdev.DirectionInput, s.Direction)
	assert.Equal(t, gpiocdev.DriveUnset, s.Drive)
	assert.Equal(t, gpiocdev.OutputValueUnset, s.Value)
}

func TestLineConfigSanitizeClearsInputOnlyOptionsOnOutput(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0).WithEdgeDetection(gpiocdev.EdgeBoth).WithDebouncePeriod(time.Millisecond)
	lc.AsOutput(gpiocdev.Inactive)
	s := lc.LineConfig(0)
	assert.Equal(t, gpiocdev.DirectionOutput, s.Direction)
	assert.Equal(t, gpiocdev.EdgeNone, s.EdgeDetection)
	assert.Equal(t, time.Duration(0), s.DebouncePeriod)
	assert.Equal(t, gpiocdev.EventClockUnset, s.EventClock)
}

func TestLineConfigWithDriveForcesOutput(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0).WithDrive(gpiocdev.DriveOpenSource)
	assert.Equal(t, gpiocdev.DirectionOutput, lc.LineConfig(0).Direction)
}

func TestLineConfigWithEdgeDetectionForcesInput(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0).WithEdgeDetection(gpiocdev.EdgeRising)
	assert.Equal(t, gpiocdev.DirectionInput, lc.LineConfig(0).Direction)
}

func TestLineConfigWithDebouncePeriodForcesInput(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0).WithDebouncePeriod(10 * time.Millisecond)
	s := lc.LineConfig(0)
	assert.Equal(t, gpiocdev.DirectionInput, s.Direction)
	assert.Equal(t, 10*time.Millisecond, s.DebouncePeriod)

	lc.WithDebouncePeriod(0)
	assert.Equal(t, time.Duration(0), lc.LineConfig(0).DebouncePeriod)
}

func TestLineConfigOptionSettersForceDirectionEvenWhenClearing(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0).AsOutput(gpiocdev.Active)
	lc.WithEdgeDetection(gpiocdev.EdgeNone)
	assert.Equal(t, gpiocdev.DirectionInput, lc.LineConfig(0).Direction)

	lc = gpiocdev.NewLineConfig()
	lc.WithLine(0).AsOutput(gpiocdev.Active)
	lc.WithDebouncePeriod(0)
	assert.Equal(t, gpiocdev.DirectionInput, lc.LineConfig(0).Direction)

	lc = gpiocdev.NewLineConfig()
	lc.WithLine(0).AsInput()
	lc.WithDrive(gpiocdev.DriveUnset)
	assert.Equal(t, gpiocdev.DirectionOutput, lc.LineConfig(0).Direction)
}

func TestLineConfigFromLineConfig(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(0)
	lc.FromLineConfig(gpiocdev.LineSettings{Direction: gpiocdev.DirectionOutput, Value: gpiocdev.OutputValueActive})
	s := lc.LineConfig(0)
	assert.Equal(t, gpiocdev.DirectionOutput, s.Direction)
	v, ok := s.Value.Resolve()
	require.True(t, ok)
	assert.Equal(t, gpiocdev.Active, v)
}

func TestLineConfigOverlayComposesAndClones(t *testing.T) {
	base := gpiocdev.NewLineConfig()
	base.WithLines([]int{1, 2}).AsInput()
	base.WithLine(1).WithBias(gpiocdev.BiasPullUp)

	top := gpiocdev.NewLineConfig()
	top.WithLine(1).WithBias(gpiocdev.BiasPullDown)

	composite := base.Overlay(top)
	assert.Equal(t, gpiocdev.BiasPullDown, composite.LineConfig(1).Bias)
	assert.Equal(t, gpiocdev.DirectionInput, composite.LineConfig(2).Direction)

	// base is untouched by the overlay.
	assert.Equal(t, gpiocdev.BiasPullUp, base.LineConfig(1).Bias)
}

func TestLineConfigOverlayNilClones(t *testing.T) {
	lc := gpiocdev.NewLineConfig()
	lc.WithLine(4).AsOutput(gpiocdev.Active)
	clone := lc.Overlay(nil)

	clone.WithLine(4).AsOutput(gpiocdev.Inactive)
	v, _ := lc.LineConfig(4).Value.Resolve()
	assert.Equal(t, gpiocdev.Active, v)
}
