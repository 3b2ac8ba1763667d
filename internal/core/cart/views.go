package cart

import "github.com/niksmo/candle-shop/internal/core/domain"

// TotalItems sums quantities over all lines.
func (c *Container) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalItems(c.items)
}

// TotalPrice sums quantity * snapshot price over all lines.
func (c *Container) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalPrice(c.items)
}

func (c *Container) Summary() domain.CartSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CartSummary{
		Items:      c.state().Items,
		TotalItems: totalItems(c.items),
		TotalPrice: totalPrice(c.items),
	}
}

func totalItems(items []domain.LineItem) (n int) {
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func totalPrice(items []domain.LineItem) (sum float64) {
	for _, it := range items {
		sum += float64(it.Quantity) * it.Product.Price
	}
	return sum
}
