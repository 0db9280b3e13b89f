// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev_test

import (
	"testing"

	"github.com/kvlab/gpiocdev"
	"github.com/stretchr/testify/assert"
)

func TestValueNot(t *testing.T) {
	assert.Equal(t, gpiocdev.Inactive, gpiocdev.Active.Not())
	assert.Equal(t, gpiocdev.Active, gpiocdev.Inactive.Not())
}

func TestValueFromBool(t *testing.T) {
	assert.Equal(t, gpiocdev.Active, gpiocdev.ValueFromBool(true))
	assert.Equal(t, gpiocdev.Inactive, gpiocdev.ValueFromBool(false))
}

func TestValueFromInt(t *testing.T) {
	patterns := []struct {
		name string
		in   int
		want gpiocdev.Value
	}{
		{"zero", 0, gpiocdev.Inactive},
		{"one", 1, gpiocdev.Active},
		{"negative", -1, gpiocdev.Active},
		{"large", 42, gpiocdev.Active},
	}
	for _, p := range patterns {
		p := p
		t.Run(p.name, func(t *testing.T) {
			assert.Equal(t, p.want, gpiocdev.ValueFromInt(p.in))
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "Active", gpiocdev.Active.String())
	assert.Equal(t, "Inactive", gpiocdev.Inactive.String())
}

func TestOutputValueResolve(t *testing.T) {
	patterns := []struct {
		name    string
		in      gpiocdev.OutputValue
		wantVal gpiocdev.Value
		wantOk  bool
	}{
		{"unset", gpiocdev.OutputValueUnset, gpiocdev.Inactive, false},
		{"inactive", gpiocdev.OutputValueInactive, gpiocdev.Inactive, true},
		{"active", gpiocdev.OutputValueActive, gpiocdev.Active, true},
	}
	for _, p := range patterns {
		p := p
		t.Run(p.name, func(t *testing.T) {
			v, ok := p.in.Resolve()
			assert.Equal(t, p.wantVal, v)
			assert.Equal(t, p.wantOk, ok)
		})
	}
}

func TestOutputValueFromValue(t *testing.T) {
	assert.Equal(t, gpiocdev.OutputValueActive, gpiocdev.OutputValueFromValue(gpiocdev.Active))
	assert.Equal(t, gpiocdev.OutputValueInactive, gpiocdev.OutputValueFromValue(gpiocdev.Inactive))
}

func TestEdgeDetectionString(t *testing.T) {
	assert.Equal(t, "None", gpiocdev.EdgeNone.String())
	assert.Equal(t, "Rising", gpiocdev.EdgeRising.String())
	assert.Equal(t, "Falling", gpiocdev.EdgeFalling.String())
	assert.Equal(t, "Both", gpiocdev.EdgeBoth.String())
	assert.Equal(t, gpiocdev.EdgeRising|gpiocdev.EdgeFalling, gpiocdev.EdgeBoth)
}

func TestEventClockString(t *testing.T) {
	assert.Equal(t, "Unset", gpiocdev.EventClockUnset.String())
	assert.Equal(t, "Monotonic", gpiocdev.EventClockMonotonic.String())
	assert.Equal(t, "Realtime", gpiocdev.EventClockRealtime.String())
	assert.Equal(t, "HTE", gpiocdev.EventClockHTE.String())
}
