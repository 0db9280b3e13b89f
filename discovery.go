// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"path"
	"strings"

	"github.com/pilebones/go-udev/netlink"
)

// FoundLine identifies a named line located by FindNamedLine or
// FindNamedLines, together with the path of the chip it lives on.
type FoundLine struct {
	// ChipPath is the device path of the chip the line was found on.
	ChipPath string

	// ChipName is the chip's canonical /dev entry name, e.g. "gpiochip0".
	ChipName string

	// Info is the line's info at the time it was found.
	Info LineInfo
}

// FindNamedLine searches every chip on the system, in Chips() order, for a
// line named name and returns the first match.
func FindNamedLine(name string) (FoundLine, error) {
	for _, chipName := range Chips() {
		fl, ok := findNamedLineOnChip(chipName, name)
		if ok {
			return fl, nil
		}
	}
	return FoundLine{}, ErrLineNotFound(name)
}

// FindNamedLines searches every chip on the system for each of names,
// returning a map keyed by name. If requireAll is true, any name not found
// on any chip causes the search to fail with ErrLineNotFound for the first
// missing name; otherwise names not found are simply absent from the
// result.
func FindNamedLines(names []string, requireAll bool) (map[string]FoundLine, error) {
	found := make(map[string]FoundLine, len(names))
	remaining := append([]string(nil), names...)
	for _, chipName := range Chips() {
		if len(remaining) == 0 {
			break
		}
		still := remaining[:0:0]
		for _, name := range remaining {
			if fl, ok := findNamedLineOnChip(chipName, name); ok {
				found[name] = fl
			} else {
				still = append(still, name)
			}
		}
		remaining = still
	}
	if requireAll && len(remaining) > 0 {
		return found, ErrLineNotFound(remaining[0])
	}
	return found, nil
}

func findNamedLineOnChip(chipName, lineName string) (FoundLine, bool) {
	c, err := OpenChip(chipName)
	if err != nil {
		return FoundLine{}, false
	}
	defer c.Close()
	offset, ok := c.findLine(lineName)
	if !ok {
		return FoundLine{}, false
	}
	info, err := c.LineInfo(offset)
	if err != nil {
		return FoundLine{}, false
	}
	return FoundLine{ChipPath: nameToPath(chipName), ChipName: c.Name, Info: info}, true
}

// ChipAction identifies whether a ChipEvent reports a chip being added or
// removed from the system.
type ChipAction int

const (
	// ChipAdded indicates the chip's character device just appeared.
	ChipAdded ChipAction = iota + 1

	// ChipRemoved indicates the chip's character device just disappeared.
	ChipRemoved
)

func (a ChipAction) String() string {
	if a == ChipRemoved {
		return "Removed"
	}
	return "Added"
}

// ChipEvent reports a GPIO chip character device being added to or removed
// from the system, as observed by WatchChips.
type ChipEvent struct {
	// Name is the chip's kernel name, e.g. "gpiochip0".
	Name string

	// Action indicates whether the chip was added or removed.
	Action ChipAction
}

// WatchChips watches for GPIO chips being added to or removed from the
// system (e.g. a gpio-mockup module load/unload, or a USB GPIO adapter
// being plugged/unplugged) via a udev netlink monitor, and returns a
// channel of ChipEvents together with a function to stop watching and
// release the monitor.
//
// This is a discovery convenience built on top of the core chip-handle
// contract; it is not part of the kernel uAPI itself, and is not subject
// to the core's no-background-goroutine rule.
func WatchChips() (<-chan ChipEvent, func(), error) {
	addConn, addQueue, addErrs, addQuit, err := newGpioUdevMonitor("add")
	if err != nil {
		return nil, nil, err
	}
	removeConn, removeQueue, removeErrs, removeQuit, err := newGpioUdevMonitor("remove")
	if err != nil {
		addQuit <- struct{}{}
		addConn.Close()
		return nil, nil, err
	}

	out := make(chan ChipEvent)
	go relayChipEvents(addQueue, addErrs, addQuit, ChipAdded, out)
	go relayChipEvents(removeQueue, removeErrs, removeQuit, ChipRemoved, out)

	stop := func() {
		addQuit <- struct{}{}
		removeQuit <- struct{}{}
		addConn.Close()
		removeConn.Close()
	}
	return out, stop, nil
}

// newGpioUdevMonitor opens a netlink kobject uevent monitor restricted to
// the gpio subsystem and the given action ("add" or "remove"), mirroring
// the connect/matcher/Monitor sequence used to watch for mockup chips.
func newGpioUdevMonitor(action string) (*netlink.UEventConn, chan netlink.UEvent, chan error, chan struct{}, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, nil, nil, nil, err
	}
	act := action
	matcher := &netlink.RuleDefinition{
		Action: &act,
		Env: map[string]string{
			"SUBSYSTEM": "gpio",
		},
	}
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	quit := conn.Monitor(queue, errs, matcher)
	return conn, queue, errs, quit, nil
}

func relayChipEvents(queue chan netlink.UEvent, errs chan error, quit chan struct{}, action ChipAction, out chan<- ChipEvent) {
	for {
		select {
		case ev := <-queue:
			devpath, ok := ev.Env["DEVNAME"]
			if !ok {
				continue
			}
			name := path.Base(devpath)
			if strings.HasPrefix(name, "gpiochip") {
				out <- ChipEvent{Name: name, Action: action}
			}
		case <-errs:
			// malformed uevents are not fatal to the watch.
		case <-quit:
			return
		}
	}
}
