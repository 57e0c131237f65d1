// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedis(RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewRedis_ConnectionRefused(t *testing.T) {
	_, err := NewRedis(RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestRedis_SetGet(t *testing.T) {
	c, _ := newTestRedis(t)

	c.Set("k", []byte("v"), time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestRedis_Expiration(t *testing.T) {
	c, mr := newTestRedis(t)

	c.Set("k", []byte("v"), 10*time.Second)
	mr.FastForward(11 * time.Second)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestRedis_DeleteAndClear(t *testing.T) {
	c, _ := newTestRedis(t)

	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), time.Minute)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestRedis_Stats(t *testing.T) {
	c, _ := newTestRedis(t)

	c.Set("k", []byte("v"), time.Minute)
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, int64(1), s.Sets)
	assert.Equal(t, 1, s.Size)
}

func TestRedis_HealthCheck(t *testing.T) {
	c, mr := newTestRedis(t)

	assert.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}
