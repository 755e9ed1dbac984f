package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStreams(t *testing.T) {
	reg := NewRegistry(testLogger(t))
	assert.Nil(t, reg.Stream("missing"))
	assert.Zero(t, reg.StreamCount())

	sess := newStreamSession("http://localhost:3000", "fst_a", testLogger(t))
	reg.PutStream("s-1", sess)
	assert.Equal(t, 1, reg.StreamCount())

	// Resolving the identifier returns the very same session, so the
	// engine's conversation state survives across requests.
	assert.Same(t, sess, reg.Stream("s-1"))
	assert.Nil(t, reg.Stream("s-2"))

	reg.RemoveStream("s-1")
	assert.Nil(t, reg.Stream("s-1"))
	assert.Zero(t, reg.StreamCount())

	// Removing twice is harmless.
	reg.RemoveStream("s-1")
}

func TestRegistryLatestLegacy(t *testing.T) {
	reg := NewRegistry(testLogger(t))
	assert.Nil(t, reg.LatestLegacy())

	a := newLegacySession("http://localhost:3000", "fst_a", testLogger(t))
	b := newLegacySession("http://localhost:3000", "fst_b", testLogger(t))
	reg.PutLegacy(a)
	reg.PutLegacy(b)
	assert.Equal(t, 2, reg.LegacyCount())

	// Most recently opened session wins.
	assert.Same(t, b, reg.LatestLegacy())

	// When it goes away, routing falls back to the previous one.
	reg.RemoveLegacy(b.id)
	assert.Same(t, a, reg.LatestLegacy())

	reg.RemoveLegacy(a.id)
	assert.Nil(t, reg.LatestLegacy())
	assert.Zero(t, reg.LegacyCount())
}

func TestLegacySessionID(t *testing.T) {
	a := legacySessionID()
	b := legacySessionID()
	assert.True(t, strings.HasPrefix(a, "sse-"))
	assert.NotEqual(t, a, b)
}

func TestLegacySessionDeliver(t *testing.T) {
	sess := newLegacySession("http://localhost:3000", "fst_a", testLogger(t))

	require.True(t, sess.deliver([]byte(`{"jsonrpc":"2.0"}`)))
	got := <-sess.events
	assert.JSONEq(t, `{"jsonrpc":"2.0"}`, string(got))

	// A stream that stops draining does not block the side channel; the
	// overflowing message is dropped instead.
	for i := 0; i < cap(sess.events); i++ {
		require.True(t, sess.deliver([]byte("x")))
	}
	assert.False(t, sess.deliver([]byte("overflow")))
}
