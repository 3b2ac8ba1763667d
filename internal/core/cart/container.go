// Package cart holds the in-memory cart state and its mutation rules.
//
// Every input is clamped or ignored instead of being rejected, so none of
// the container operations return an error.
package cart

import (
	"slices"
	"sync"

	"github.com/niksmo/candle-shop/internal/core/domain"
)

// A Listener is notified after every mutation that changes the items.
//
// Listeners run while the container is locked and must not call back
// into it.
type Listener func(domain.Change)

type Container struct {
	mu        sync.Mutex
	items     []domain.LineItem
	listeners []Listener
}

// New returns a container restored from state.
//
// Restored items are brought back to the cart invariants: lines with a
// non-positive quantity are dropped, quantities are clamped to the
// snapshot stock and duplicated products are merged into the first line.
func New(state domain.CartState, listeners ...Listener) *Container {
	return &Container{
		items:     normalize(state.Items),
		listeners: listeners,
	}
}

func (c *Container) Subscribe(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// AddOneToCart adds a single unit of product.
func (c *Container) AddOneToCart(product domain.Product) {
	c.AddToCart(product, 1)
}

// AddToCart adds quantity units of product, clamped at its stock.
//
// A product already in the cart takes the passed snapshot, so the price
// and the stock bound always come from the latest catalog read.
func (c *Container) AddToCart(product domain.Product, quantity int) {
	if quantity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(product.ID)
	if i < 0 {
		q := min(quantity, product.StockQuantity)
		if q <= 0 {
			return
		}
		c.items = append(c.items, domain.LineItem{
			ProductID: product.ID,
			Product:   product,
			Quantity:  q,
		})
		c.notify(domain.ChangeAdded, delta(product.ID, q))
		return
	}

	prev := c.items[i]
	q := clampedSum(prev.Quantity, quantity, product.StockQuantity)
	if q <= 0 {
		c.items = slices.Delete(c.items, i, i+1)
		c.notify(domain.ChangeRemoved, delta(product.ID, -prev.Quantity))
		return
	}

	c.items[i].Product = product
	c.items[i].Quantity = q
	switch {
	case q > prev.Quantity:
		c.notify(domain.ChangeAdded, delta(product.ID, q-prev.Quantity))
	case q < prev.Quantity:
		// lowered stock of the refreshed snapshot
		c.notify(domain.ChangeUpdated, delta(product.ID, q-prev.Quantity))
	case prev.Product != product:
		c.notify(domain.ChangeUpdated, delta(product.ID, 0))
	}
}

func (c *Container) RemoveFromCart(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
}

// UpdateQuantity sets the quantity of a line, clamped at its snapshot
// stock. A non-positive quantity removes the line. Unknown products are
// ignored.
func (c *Container) UpdateQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(productID)
		return
	}

	i := c.indexOf(productID)
	if i < 0 {
		return
	}

	prev := c.items[i].Quantity
	q := min(quantity, c.items[i].Product.StockQuantity)
	if q == prev {
		return
	}
	c.items[i].Quantity = q
	c.notify(domain.ChangeUpdated, delta(productID, q-prev))
}

func (c *Container) ClearCart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return
	}

	deltas := make([]domain.ItemDelta, len(c.items))
	for i, it := range c.items {
		deltas[i] = delta(it.ProductID, -it.Quantity)
	}
	c.items = nil
	c.notify(domain.ChangeCleared, deltas...)
}

func (c *Container) IsInCart(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(productID) >= 0
}

// ItemQuantity returns 0 for products not in the cart.
func (c *Container) ItemQuantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Container) Items() []domain.LineItem {
	return c.State().Items
}

func (c *Container) State() domain.CartState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Container) remove(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	q := c.items[i].Quantity
	c.items = slices.Delete(c.items, i, i+1)
	c.notify(domain.ChangeRemoved, delta(productID, -q))
}

func (c *Container) indexOf(productID string) int {
	return slices.IndexFunc(c.items, func(it domain.LineItem) bool {
		return it.ProductID == productID
	})
}

func (c *Container) state() domain.CartState {
	return domain.CartState{Items: c.items}.Clone()
}

func (c *Container) notify(kind domain.ChangeKind, deltas ...domain.ItemDelta) {
	if len(c.listeners) == 0 {
		return
	}
	change := domain.Change{Kind: kind, Deltas: deltas, State: c.state()}
	for _, l := range c.listeners {
		l(change)
	}
}

func delta(productID string, d int) domain.ItemDelta {
	return domain.ItemDelta{ProductID: productID, Delta: d}
}

func normalize(items []domain.LineItem) []domain.LineItem {
	var out []domain.LineItem
	for _, it := range items {
		if it.ProductID == "" {
			it.ProductID = it.Product.ID
		}
		i := slices.IndexFunc(out, func(o domain.LineItem) bool {
			return o.ProductID == it.ProductID
		})
		if i >= 0 {
			if it.Quantity > 0 {
				out[i].Quantity = clampedSum(out[i].Quantity, it.Quantity, out[i].Product.StockQuantity)
			}
			continue
		}
		q := min(it.Quantity, it.Product.StockQuantity)
		if q <= 0 {
			continue
		}
		it.Quantity = q
		out = append(out, it)
	}
	return out
}

// clampedSum returns min(a+b, limit) for a, b >= 0 without overflowing.
func clampedSum(a, b, limit int) int {
	if a >= limit {
		return limit
	}
	return a + min(b, limit-a)
}
