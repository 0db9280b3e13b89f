// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeEventFromSliceShortBufferV1(t *testing.T) {
	r := &Request{abi: ABIVersionV1, offsets: []int{3}}
	_, err := r.EdgeEventFromSlice(make([]byte, r.EdgeEventSize()-1))
	require.NotNil(t, err)
	sr, ok := err.(ErrShortRead)
	require.True(t, ok)
	assert.Equal(t, "edge event", sr.Record)
	assert.Equal(t, r.EdgeEventSize(), sr.Expected)
	assert.Equal(t, r.EdgeEventSize()-1, sr.Actual)
}

func TestEdgeEventFromSliceShortBufferV2(t *testing.T) {
	r := &Request{abi: ABIVersionV2, offsets: []int{3}}
	_, err := r.EdgeEventFromSlice(make([]byte, 1))
	require.NotNil(t, err)
	sr, ok := err.(ErrShortRead)
	require.True(t, ok)
	assert.Equal(t, r.EdgeEventSize(), sr.Expected)
	assert.Equal(t, 1, sr.Actual)
}

func TestWrapShortReadPassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, ErrClosed, wrapShortRead(ErrClosed, "edge event"))
}
