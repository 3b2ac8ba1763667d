package httphandler

import "github.com/niksmo/candle-shop/internal/core/domain"

type (
	Product struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		Slug          string  `json:"slug"`
		Price         float64 `json:"price"`
		StockQuantity int     `json:"stock_quantity"`
	}

	LineItem struct {
		ID       string  `json:"id"`
		Product  Product `json:"product"`
		Quantity int     `json:"quantity"`
	}

	Cart struct {
		Items      []LineItem `json:"items"`
		TotalItems int        `json:"total_items"`
		TotalPrice float64    `json:"total_price"`
	}

	AddItemRequest struct {
		ProductID string `json:"product_id"`
		Quantity  *int   `json:"quantity"`
	}

	UpdateItemRequest struct {
		Quantity int `json:"quantity"`
	}

	ItemStatus struct {
		ProductID string `json:"product_id"`
		InCart    bool   `json:"in_cart"`
		Quantity  int    `json:"quantity"`
	}

	OrderLine struct {
		ProductID string  `json:"product_id"`
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}

	OrderRequest struct {
		Lines      []OrderLine `json:"lines"`
		TotalItems int         `json:"total_items"`
		TotalPrice float64     `json:"total_price"`
		Currency   string      `json:"currency"`
	}

	ProductDemand struct {
		ProductID string `json:"product_id"`
		Demand    int64  `json:"demand"`
	}
)

func fromSummary(s domain.CartSummary) Cart {
	items := make([]LineItem, len(s.Items))
	for i, it := range s.Items {
		items[i] = LineItem{
			ID:       it.ProductID,
			Quantity: it.Quantity,
			Product: Product{
				ID:            it.Product.ID,
				Name:          it.Product.Name,
				Slug:          it.Product.Slug,
				Price:         it.Product.Price,
				StockQuantity: it.Product.StockQuantity,
			},
		}
	}
	return Cart{
		Items:      items,
		TotalItems: s.TotalItems,
		TotalPrice: s.TotalPrice,
	}
}

func fromOrderRequest(o domain.OrderRequest) OrderRequest {
	lines := make([]OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		}
	}
	return OrderRequest{
		Lines:      lines,
		TotalItems: o.TotalItems,
		TotalPrice: o.TotalPrice,
		Currency:   o.Currency,
	}
}
