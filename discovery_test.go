// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev_test

import (
	"testing"

	"github.com/kvlab/gpiocdev"
	"github.com/stretchr/testify/assert"
)

func TestChipActionString(t *testing.T) {
	assert.Equal(t, "Added", gpiocdev.ChipAdded.String())
	assert.Equal(t, "Removed", gpiocdev.ChipRemoved.String())
}

func TestFoundLineFields(t *testing.T) {
	fl := gpiocdev.FoundLine{
		ChipPath: "/dev/gpiochip0",
		ChipName: "gpiochip0",
		Info:     gpiocdev.LineInfo{Offset: 2, Name: "BUTTON1"},
	}
	assert.Equal(t, "gpiochip0", fl.ChipName)
	assert.Equal(t, 2, fl.Info.Offset)
}
