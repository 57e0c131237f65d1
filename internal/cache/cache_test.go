// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestMemory_Expiration(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestMemory_DeleteAndClear(t *testing.T) {
	c := NewMemory(0)

	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Size)
}

func TestMemory_Stats(t *testing.T) {
	c := NewMemory(0)

	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Sets)
	assert.Equal(t, 1, s.Size)
}

func TestMemory_JanitorEvicts(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	defer c.Stop()

	c.Set("k", []byte("v"), time.Millisecond)

	require.Eventually(t, func() bool {
		return c.Stats().Size == 0
	}, time.Second, 10*time.Millisecond)
}

func TestDisabled_NoOps(t *testing.T) {
	var c Cache = Disabled{}

	c.Set("k", []byte("v"), time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Delete("k")
	c.Clear()
	assert.Zero(t, c.Stats())
}
