package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincshop/storefront-client/internal/store"
)

func TestCompare_FifthEvictsFirst(t *testing.T) {
	c := store.NewCompare()
	for i := int64(1); i <= 5; i++ {
		c.Add(product(i, "p"))
	}

	items := c.Items()
	require.Len(t, items, 4)
	assert.Equal(t, int64(2), items[0].ID, "oldest item evicted")
	assert.Equal(t, int64(5), items[3].ID, "newest item kept")
}

func TestCompare_AddIsIdempotent(t *testing.T) {
	c := store.NewCompare()
	c.Add(product(1, "p"))
	c.Add(product(1, "p"))

	assert.Len(t, c.Items(), 1)
}

func TestCompare_RemoveAndClear(t *testing.T) {
	c := store.NewCompare()
	c.Add(product(1, "a"))
	c.Add(product(2, "b"))

	c.Remove(1)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	c.Clear()
	assert.Empty(t, c.Items())
}
