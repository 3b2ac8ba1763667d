package domain

type (
	// A LineItem keeps 1 <= Quantity <= Product.StockQuantity.
	LineItem struct {
		ProductID string
		Product   Product
		Quantity  int
	}

	// A CartState holds line items unique by ProductID in insertion order.
	CartState struct {
		Items []LineItem
	}

	CartSummary struct {
		Items      []LineItem
		TotalItems int
		TotalPrice float64
	}
)

// Clone returns a copy that shares no memory with s.
func (s CartState) Clone() CartState {
	if s.Items == nil {
		return CartState{}
	}
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	return CartState{Items: items}
}

func (s CartState) Empty() bool {
	return len(s.Items) == 0
}
