package store

import (
	"sync"

	"github.com/bincshop/storefront-client/internal/catalog"
)

// CartItem is one cart line: a product and how many of it.
type CartItem struct {
	Product  catalog.Product
	Quantity int
}

// Cart is the guest-scoped shopping cart. The running total is recomputed on
// every mutation so readers never observe a stale sum.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
	total float64
}

func NewCart() *Cart {
	return &Cart{}
}

// Add puts quantity units of a product into the cart. Adding a product
// already present increases its quantity instead of creating a second line.
func (c *Cart) Add(p catalog.Product, quantity int) {
	if quantity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity += quantity
			c.recompute()
			return
		}
	}
	c.items = append(c.items, CartItem{Product: p, Quantity: quantity})
	c.recompute()
}

// Remove drops a product's line entirely, regardless of quantity.
func (c *Cart) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.recompute()
			return
		}
	}
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line; an unknown product is ignored.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = quantity
		}
		c.recompute()
		return
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.total = 0
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// recompute rebuilds the running total. Callers hold the lock.
func (c *Cart) recompute() {
	sum := 0.0
	for _, item := range c.items {
		sum += item.Product.Price * float64(item.Quantity)
	}
	c.total = sum
}
