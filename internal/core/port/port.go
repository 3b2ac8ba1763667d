package port

import (
	"context"
	"sync"

	"github.com/niksmo/candle-shop/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// A CartStore persists a single cart.
//
// Load returns an empty state when nothing usable is stored and Save is
// best-effort, neither reports failures to the caller.
type CartStore interface {
	Load(context.Context) domain.CartState
	Save(context.Context, domain.CartState)
}

// A Slot is a durable key-value cell holding serialized carts.
//
// Get reports ok=false when the key is absent.
type Slot interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key string, value string) error
}

type ProductReader interface {
	ReadProduct(ctx context.Context, productID string) (domain.Product, error)
}

type DemandReader interface {
	ProductDemand(ctx context.Context, productID string) (int64, error)
}

type CartEventsProducer interface {
	ProduceChange(sessionID string, change domain.Change)
	closer
}

type DemandProcessor interface {
	runnerContextWg
	closer
}

type DemandView interface {
	DemandReader
	Run(context.Context) error
}

type CartService interface {
	Cart(ctx context.Context, sessionID string) domain.CartSummary
	AddToCart(ctx context.Context, sessionID, productID string, quantity int) (domain.CartSummary, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) domain.CartSummary
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) domain.CartSummary
	ClearCart(ctx context.Context, sessionID string) domain.CartSummary
	ItemQuantity(ctx context.Context, sessionID, productID string) (inCart bool, quantity int)
	Checkout(ctx context.Context, sessionID string) (domain.OrderRequest, error)
	ProductDemand(ctx context.Context, productID string) (int64, error)
	EndSession(sessionID string)
}
