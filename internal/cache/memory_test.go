package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	c, err := NewMemory[string](time.Minute, 10)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", "value"))

	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "value", got)
}

func TestMemory_TTLExpiry(t *testing.T) {
	c, err := NewMemory[string](50*time.Millisecond, 10)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "value"))

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)

	time.Sleep(80 * time.Millisecond)

	_, found, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "expired entries are treated as absent")
}

func TestMemory_Invalidate(t *testing.T) {
	c, err := NewMemory[int](time.Minute, 10)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	require.NoError(t, c.Invalidate(ctx, "a"))

	_, found, _ := c.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "b")
	assert.True(t, found)
}

func TestMemory_Purge(t *testing.T) {
	c, err := NewMemory[int](time.Minute, 10)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	require.NoError(t, c.Purge(ctx))

	_, found, _ := c.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "b")
	assert.False(t, found)
}
