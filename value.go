// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

// Value is the logical level of a line: Inactive or Active.
//
// The physical-to-logical mapping is inverted when the line is configured
// active-low: Inactive always maps to 0/false and Active to 1/true, but
// which physical level that corresponds to depends on ActiveLow.
type Value int

const (
	// Inactive is the logical low/false/0 level.
	Inactive Value = iota

	// Active is the logical high/true/1 level.
	Active
)

// Not returns the opposite value.
func (v Value) Not() Value {
	if v == Active {
		return Inactive
	}
	return Active
}

// Bool returns the value as a bool, with Active mapping to true.
func (v Value) Bool() bool {
	return v == Active
}

// Int returns the value as an int, 0 or 1.
func (v Value) Int() int {
	return int(v)
}

// ValueFromBool converts a bool into a Value.
func ValueFromBool(b bool) Value {
	if b {
		return Active
	}
	return Inactive
}

// ValueFromInt converts an int into a Value, with any non-zero value
// mapping to Active, matching the kernel's "zero is low, anything else is
// high" convention for the v1 uAPI.
func ValueFromInt(i int) Value {
	if i != 0 {
		return Active
	}
	return Inactive
}

func (v Value) String() string {
	if v == Active {
		return "Active"
	}
	return "Inactive"
}

// Direction indicates the direction of a line.
type Direction int

const (
	// DirectionUnset means leave the line direction as-is.
	DirectionUnset Direction = iota

	// DirectionInput requests the line as an input.
	DirectionInput

	// DirectionOutput requests the line as an output.
	DirectionOutput
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "Input"
	case DirectionOutput:
		return "Output"
	default:
		return "Unset"
	}
}

// Bias indicates the bias applied to a line.
type Bias int

const (
	// BiasUnset leaves the bias as-is.
	BiasUnset Bias = iota

	// BiasDisabled disables the line bias.
	BiasDisabled

	// BiasPullUp enables a pull-up bias.
	BiasPullUp

	// BiasPullDown enables a pull-down bias.
	BiasPullDown
)

func (b Bias) String() string {
	switch b {
	case BiasDisabled:
		return "Disabled"
	case BiasPullUp:
		return "PullUp"
	case BiasPullDown:
		return "PullDown"
	default:
		return "Unset"
	}
}

// Drive indicates the drive of an output line.
type Drive int

const (
	// DriveUnset leaves the drive as-is.
	DriveUnset Drive = iota

	// DrivePushPull drives the line in both directions.
	DrivePushPull

	// DriveOpenDrain drives the line low but leaves it floating when high.
	DriveOpenDrain

	// DriveOpenSource drives the line high but leaves it floating when low.
	DriveOpenSource
)

func (d Drive) String() string {
	switch d {
	case DrivePushPull:
		return "PushPull"
	case DriveOpenDrain:
		return "OpenDrain"
	case DriveOpenSource:
		return "OpenSource"
	default:
		return "Unset"
	}
}

// EdgeDetection indicates the edges an input line reports events for.
type EdgeDetection int

const (
	// EdgeNone disables edge detection.
	EdgeNone EdgeDetection = iota

	// EdgeRising reports rising edges.
	EdgeRising

	// EdgeFalling reports falling edges.
	EdgeFalling

	// EdgeBoth reports both rising and falling edges.
	EdgeBoth = EdgeRising | EdgeFalling
)

func (e EdgeDetection) String() string {
	switch e {
	case EdgeRising:
		return "Rising"
	case EdgeFalling:
		return "Falling"
	case EdgeBoth:
		return "Both"
	default:
		return "None"
	}
}

// EventClock indicates the source clock used to timestamp edge events.
type EventClock int

const (
	// EventClockUnset leaves the event clock as-is.
	EventClockUnset EventClock = iota

	// EventClockMonotonic timestamps events with CLOCK_MONOTONIC.
	EventClockMonotonic

	// EventClockRealtime timestamps events with CLOCK_REALTIME.
	EventClockRealtime

	// EventClockHTE timestamps events using the Hardware Timestamping Engine.
	//
	// Requires a kernel built with CONFIG_HTE and a line backed by an HTE
	// provider; requesting it where unsupported fails at request time with
	// the kernel's EOPNOTSUPP, surfaced unchanged rather than emulated.
	EventClockHTE
)

func (c EventClock) String() string {
	switch c {
	case EventClockMonotonic:
		return "Monotonic"
	case EventClockRealtime:
		return "Realtime"
	case EventClockHTE:
		return "HTE"
	default:
		return "Unset"
	}
}

// OutputValue is the tri-state initial-value option of a Line Config: it may
// be left unset (kernel default), or pinned to Inactive or Active.
type OutputValue int

const (
	// OutputValueUnset leaves the initial output value as-is.
	OutputValueUnset OutputValue = iota

	// OutputValueInactive requests an initial logical low.
	OutputValueInactive

	// OutputValueActive requests an initial logical high.
	OutputValueActive
)

// Resolve returns the Value this option pins to, and whether it is set at
// all.
func (v OutputValue) Resolve() (Value, bool) {
	switch v {
	case OutputValueActive:
		return Active, true
	case OutputValueInactive:
		return Inactive, true
	default:
		return Inactive, false
	}
}

// OutputValueFromValue converts a Value into a set OutputValue.
func OutputValueFromValue(v Value) OutputValue {
	if v == Active {
		return OutputValueActive
	}
	return OutputValueInactive
}

func (v OutputValue) String() string {
	switch v {
	case OutputValueActive:
		return "Active"
	case OutputValueInactive:
		return "Inactive"
	default:
		return "Unset"
	}
}

// EdgeEventType indicates the type of edge an EdgeEvent represents.
type EdgeEventType int

const (
	// RisingEdge indicates an inactive to active transition.
	RisingEdge EdgeEventType = iota + 1

	// FallingEdge indicates an active to inactive transition.
	FallingEdge
)

func (t EdgeEventType) String() string {
	if t == FallingEdge {
		return "FallingEdge"
	}
	return "RisingEdge"
}

// InfoChangeType indicates the type of change reported by an InfoChangeEvent.
type InfoChangeType int

const (
	// LineRequested indicates the line has been requested.
	LineRequested InfoChangeType = iota + 1

	// LineReleased indicates the line has been released.
	LineReleased

	// LineReconfigured indicates the line configuration has changed.
	LineReconfigured
)

func (t InfoChangeType) String() string {
	switch t {
	case LineRequested:
		return "Requested"
	case LineReleased:
		return "Released"
	case LineReconfigured:
		return "Reconfigured"
	default:
		return "Unknown"
	}
}
