package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincshop/storefront-client/internal/catalog"
	"github.com/bincshop/storefront-client/internal/store"
)

func priced(id int64, price float64) catalog.Product {
	return catalog.Product{ID: id, Name: "p", Price: price}
}

func TestCart_AddAccumulatesQuantity(t *testing.T) {
	c := store.NewCart()
	c.Add(priced(1, 10), 1)
	c.Add(priced(1, 10), 2)

	items := c.Items()
	require.Len(t, items, 1, "same product stays on one line")
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 30.0, c.Total())
}

func TestCart_TotalTracksMutations(t *testing.T) {
	c := store.NewCart()
	c.Add(priced(1, 10), 2)
	c.Add(priced(2, 5.5), 1)
	assert.Equal(t, 25.5, c.Total())

	c.UpdateQuantity(2, 3)
	assert.Equal(t, 36.5, c.Total())

	c.Remove(1)
	assert.Equal(t, 16.5, c.Total())
}

func TestCart_UpdateQuantityToZeroRemovesLine(t *testing.T) {
	c := store.NewCart()
	c.Add(priced(1, 10), 2)

	c.UpdateQuantity(1, 0)
	assert.Empty(t, c.Items())
	assert.Equal(t, 0.0, c.Total())
}

func TestCart_UpdateUnknownProductIgnored(t *testing.T) {
	c := store.NewCart()
	c.Add(priced(1, 10), 1)

	c.UpdateQuantity(99, 5)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCart_AddNonPositiveQuantityIgnored(t *testing.T) {
	c := store.NewCart()
	c.Add(priced(1, 10), 0)
	c.Add(priced(1, 10), -2)

	assert.Empty(t, c.Items())
}

func TestCart_Clear(t *testing.T) {
	c := store.NewCart()
	c.Add(priced(1, 10), 2)
	c.Add(priced(2, 5), 1)

	c.Clear()
	assert.Empty(t, c.Items())
	assert.Equal(t, 0.0, c.Total())
}
