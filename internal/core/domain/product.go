package domain

// A Product is a snapshot of catalog attributes taken when the product
// is put into a cart. It is not refreshed from the catalog automatically.
type Product struct {
	ID            string
	Name          string
	Slug          string
	Price         float64
	StockQuantity int
}
