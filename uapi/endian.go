// SPDX-License-Identifier: MIT
//
// Copyright © 2019 Kent Gibson <warthog618@gmail.com>.

//go:build linux && !386 && !amd64
// +build linux,!386,!amd64

package uapi

import (
	"encoding/binary"
	"unsafe"
)

// nativeEndian is the byte order of the running kernel/CPU, used to decode
// fixed-layout records read back from the chip or request fd.
var nativeEndian = findEndian()

func findEndian() binary.ByteOrder {
	// the standard hack to determine native Endianness.
	buf := [2]byte{}
	*(*uint16)(unsafe.Pointer(&buf[0])) = uint16(0xABCD)
	switch buf {
	case [2]byte{0xCD, 0xAB}:
		return binary.LittleEndian
	case [2]byte{0xAB, 0xCD}:
		return binary.BigEndian
	default:
		panic("could not determine native endianness")
	}
}
