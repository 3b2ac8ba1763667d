package domain

type (
	OrderLine struct {
		ProductID string
		Name      string
		Quantity  int
		UnitPrice float64
		LineTotal float64
	}

	// An OrderRequest is handed to the payment gateway on checkout.
	OrderRequest struct {
		SessionID  string
		Lines      []OrderLine
		TotalItems int
		TotalPrice float64
		Currency   string
	}
)
