package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientMiss(t *testing.T) {
	c := NewMemoryClient(10)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientEvictsOldestAtCapacity(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(3)

	require.NoError(t, c.Set(ctx, "old", []byte("1"), time.Minute))
	for i := 0; i < 2; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("x"), time.Hour))
	}
	require.NoError(t, c.Set(ctx, "new", []byte("2"), time.Hour))

	// The entry closest to expiry goes first.
	_, err := c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "search", SearchKey())
	assert.Equal(t, "search:คาเฟ่:ชุมโค", SearchKey("คาเฟ่", "ชุมโค"))
	assert.Equal(t, SearchKey("a", "b"), SearchKey("a", "b"))
	assert.NotEqual(t, SearchKey("a", "b"), SearchKey("b", "a"))
}
