// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package gpiocdev

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollReadableZeroTimeoutNotReady(t *testing.T) {
	r, w, err := os.Pipe()
	require.Nil(t, err)
	defer r.Close()
	defer w.Close()

	ready, err := pollReadable(r.Fd(), 0)
	require.Nil(t, err)
	assert.False(t, ready)
}

func TestPollReadableZeroTimeoutReady(t *testing.T) {
	r, w, err := os.Pipe()
	require.Nil(t, err)
	defer r.Close()
	defer w.Close()

	_, err = w.Write([]byte("x"))
	require.Nil(t, err)

	ready, err := pollReadable(r.Fd(), 0)
	require.Nil(t, err)
	assert.True(t, ready)
}

func TestPollReadableBoundedTimeout(t *testing.T) {
	r, w, err := os.Pipe()
	require.Nil(t, err)
	defer r.Close()
	defer w.Close()

	start := time.Now()
	ready, err := pollReadable(r.Fd(), 20*time.Millisecond)
	elapsed := time.Since(start)
	require.Nil(t, err)
	assert.False(t, ready)
	assert.True(t, elapsed >= 15*time.Millisecond)
}

func TestPollReadableNegativeTimeoutBlocksUntilReady(t *testing.T) {
	r, w, err := os.Pipe()
	require.Nil(t, err)
	defer r.Close()
	defer w.Close()

	done := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		w.Write([]byte("x"))
	}()
	go func() {
		ready, err := pollReadable(r.Fd(), -1)
		assert.Nil(t, err)
		assert.True(t, ready)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pollReadable did not unblock")
	}
}
