// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import "time"

// LineSettings describes the options applied to a single line, or the base
// template inherited by lines not yet given their own settings.
type LineSettings struct {
	Direction      Direction
	ActiveLow      bool
	Bias           Bias
	Drive          Drive
	EdgeDetection  EdgeDetection
	EventClock     EventClock
	DebouncePeriod time.Duration
	Value          OutputValue
}

// sanitize enforces the invariants of §3: direction and the option groups
// that only make sense for one direction are kept mutually consistent
// regardless of the order mutators were called in.
func (s LineSettings) sanitize() LineSettings {
	switch s.Direction {
	case DirectionInput:
		s.Drive = DriveUnset
		s.Value = OutputValueUnset
	case DirectionOutput:
		s.EdgeDetection = EdgeNone
		s.DebouncePeriod = 0
		s.EventClock = EventClockUnset
	}
	if s.DebouncePeriod < 0 {
		s.DebouncePeriod = 0
	}
	return s
}

// LineConfig is an in-memory description of per-line intent: a base
// template plus overrides for individual line offsets, manipulated through a
// selection cursor (the "selection-cursor mutator pattern" of §9).
//
// The zero value is not usable; use NewLineConfig.
type LineConfig struct {
	base     LineSettings
	lines    map[int]LineSettings
	offsets  []int
	selected []int
}

// NewLineConfig returns an empty LineConfig with no lines selected.
func NewLineConfig() *LineConfig {
	return &LineConfig{
		lines: map[int]LineSettings{},
	}
}

// targets returns the offsets a mutator should apply to: the current
// selection, or nil to indicate the base template should be mutated instead.
func (lc *LineConfig) targets() []int {
	return lc.selected
}

// mutate applies fn to the selected lines, or to the base template if no
// line is currently selected, then re-sanitizes the result.
func (lc *LineConfig) mutate(fn func(LineSettings) LineSettings) *LineConfig {
	sel := lc.targets()
	if len(sel) == 0 {
		lc.base = fn(lc.base).sanitize()
		return lc
	}
	for _, o := range sel {
		s := lc.lines[o]
		lc.lines[o] = fn(s).sanitize()
	}
	return lc
}

// addOffset records o in the offset order if it is not already known, and
// seeds its settings from the base template.
func (lc *LineConfig) addOffset(o int) {
	if _, ok := lc.lines[o]; ok {
		return
	}
	lc.lines[o] = lc.base
	lc.offsets = append(lc.offsets, o)
}

// WithLine replaces the selection with the single offset o, adding it
// (inheriting the base template) if it is not already known.
func (lc *LineConfig) WithLine(offset int) *LineConfig {
	lc.addOffset(offset)
	lc.selected = []int{offset}
	return lc
}

// WithLines replaces the selection with offsets, collapsing duplicates and
// adding any offset not already known (inheriting the base template).
func (lc *LineConfig) WithLines(offsets []int) *LineConfig {
	seen := make(map[int]bool, len(offsets))
	sel := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if seen[o] {
			continue
		}
		seen[o] = true
		lc.addOffset(o)
		sel = append(sel, o)
	}
	lc.selected = sel
	return lc
}

// WithoutLine removes offset from the offset list, selection, and
// per-line settings.
func (lc *LineConfig) WithoutLine(offset int) *LineConfig {
	return lc.WithoutLines([]int{offset})
}

// WithoutLines removes offsets from the offset list, selection, and
// per-line settings.
func (lc *LineConfig) WithoutLines(offsets []int) *LineConfig {
	drop := make(map[int]bool, len(offsets))
	for _, o := range offsets {
		drop[o] = true
		delete(lc.lines, o)
	}
	lc.offsets = filterInts(lc.offsets, func(o int) bool { return !drop[o] })
	lc.selected = filterInts(lc.selected, func(o int) bool { return !drop[o] })
	return lc
}

// WithOutputLines is a bulk form of WithLine(offset).AsOutput(value) for
// each entry in values.
func (lc *LineConfig) WithOutputLines(values map[int]Value) *LineConfig {
	for o, v := range values {
		lc.WithLine(o).AsOutput(v)
	}
	return lc
}

// FromLineConfig overwrites the currently-selected lines (or the base
// template, if none are selected) with settings.
func (lc *LineConfig) FromLineConfig(settings LineSettings) *LineConfig {
	return lc.mutate(func(LineSettings) LineSettings { return settings })
}

// AsInput selects the Input direction, clearing output-only options.
func (lc *LineConfig) AsInput() *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.Direction = DirectionInput
		return s
	})
}

// AsOutput selects the Output direction with the given initial value,
// clearing input-only options.
func (lc *LineConfig) AsOutput(value Value) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.Direction = DirectionOutput
		s.Value = OutputValueFromValue(value)
		return s
	})
}

// AsIs clears the direction, leaving the line as the kernel currently has
// it.
func (lc *LineConfig) AsIs() *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.Direction = DirectionUnset
		return s
	})
}

// AsActiveLow selects active-low polarity.
func (lc *LineConfig) AsActiveLow() *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.ActiveLow = true
		return s
	})
}

// AsActiveHigh selects active-high (non-inverted) polarity.
func (lc *LineConfig) AsActiveHigh() *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.ActiveLow = false
		return s
	})
}

// WithBias selects the line bias.
func (lc *LineConfig) WithBias(b Bias) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.Bias = b
		return s
	})
}

// WithDrive selects the output drive, implicitly forcing direction=Output.
func (lc *LineConfig) WithDrive(d Drive) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.Drive = d
		s.Direction = DirectionOutput
		return s
	})
}

// WithEdgeDetection selects the edges to report, implicitly forcing
// direction=Input.
func (lc *LineConfig) WithEdgeDetection(e EdgeDetection) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.EdgeDetection = e
		s.Direction = DirectionInput
		return s
	})
}

// WithEventClock selects the clock used to timestamp edge events.
func (lc *LineConfig) WithEventClock(c EventClock) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.EventClock = c
		return s
	})
}

// WithDebouncePeriod selects the debounce period, implicitly forcing
// direction=Input. A zero period collapses to unset.
func (lc *LineConfig) WithDebouncePeriod(d time.Duration) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.DebouncePeriod = d
		s.Direction = DirectionInput
		return s
	})
}

// WithValue selects the initial output value.
func (lc *LineConfig) WithValue(v Value) *LineConfig {
	return lc.mutate(func(s LineSettings) LineSettings {
		s.Value = OutputValueFromValue(v)
		return s
	})
}

// LineConfig returns the effective settings for offset, which is either its
// own entry or, if unknown, the base template.
func (lc *LineConfig) LineConfig(offset int) LineSettings {
	if s, ok := lc.lines[offset]; ok {
		return s
	}
	return lc.base
}

// Lines returns the known offsets, ordered by first addition.
func (lc *LineConfig) Lines() []int {
	out := make([]int, len(lc.offsets))
	copy(out, lc.offsets)
	return out
}

// NumLines returns the number of known offsets.
func (lc *LineConfig) NumLines() int {
	return len(lc.offsets)
}

// Overlay produces a new LineConfig that keeps this config's offset order,
// taking each line's settings from top where top defines them and from this
// config otherwise. Offsets present only in top are ignored.
func (lc *LineConfig) Overlay(top *LineConfig) *LineConfig {
	out := &LineConfig{
		base:    lc.base,
		lines:   make(map[int]LineSettings, len(lc.lines)),
		offsets: append([]int(nil), lc.offsets...),
	}
	for _, o := range lc.offsets {
		s := lc.lines[o]
		if top != nil {
			if ts, ok := top.lines[o]; ok {
				s = ts
			}
		}
		out.lines[o] = s
	}
	return out
}

func filterInts(in []int, keep func(int) bool) []int {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
