package store

import (
	"sync"

	"github.com/bincshop/storefront-client/internal/catalog"
)

// CompareLimit caps the comparison tray. Adding beyond the cap evicts the
// oldest entry first.
const CompareLimit = 4

// Compare is the guest-scoped product comparison tray. It never touches the
// server.
type Compare struct {
	mu    sync.Mutex
	items []catalog.Product
}

func NewCompare() *Compare {
	return &Compare{}
}

// Add puts a product into the tray. Re-adding an existing product is a
// no-op; a fifth product evicts the one added first.
func (c *Compare) Add(p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.items {
		if existing.ID == p.ID {
			return
		}
	}
	c.items = append(c.items, p)
	if len(c.items) > CompareLimit {
		c.items = c.items[len(c.items)-CompareLimit:]
	}
}

func (c *Compare) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.items {
		if existing.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Items returns the tray contents in insertion order.
func (c *Compare) Items() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]catalog.Product, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Compare) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
