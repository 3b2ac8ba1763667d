package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
)

var _ port.CartStore = (*CartStore)(nil)

const defaultSaveTimeout = 3 * time.Second

type (
	lineItemRecord struct {
		ID       string        `json:"id"`
		Product  productRecord `json:"product"`
		Quantity int           `json:"quantity"`
	}

	productRecord struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		Slug          string  `json:"slug"`
		Price         float64 `json:"price"`
		StockQuantity int     `json:"stock_quantity"`
	}
)

// A CartStore persists a cart as a JSON array of line items under a
// fixed slot key.
//
// Failures never reach the caller: a missing or broken value loads as an
// empty cart and a rejected write is only logged.
type CartStore struct {
	slot        port.Slot
	key         string
	saveTimeout time.Duration
}

func NewCartStore(slot port.Slot, key string, saveTimeout time.Duration) CartStore {
	if saveTimeout <= 0 {
		saveTimeout = defaultSaveTimeout
	}
	return CartStore{slot: slot, key: key, saveTimeout: saveTimeout}
}

func (s CartStore) Key() string {
	return s.key
}

func (s CartStore) Load(ctx context.Context) domain.CartState {
	const op = "CartStore.Load"
	log := slog.With("op", op, "key", s.key)

	v, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		log.Error("failed to read cart", "err", err)
		return domain.CartState{}
	}
	if !ok {
		return domain.CartState{}
	}

	state, err := UnmarshalCart(v)
	if err != nil {
		log.Warn("failed to parse stored cart", "err", err)
		return domain.CartState{}
	}
	return state
}

func (s CartStore) Save(ctx context.Context, state domain.CartState) {
	const op = "CartStore.Save"
	log := slog.With("op", op, "key", s.key)

	v, err := MarshalCart(state)
	if err != nil {
		log.Error("failed to serialize cart", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()

	if err := s.slot.Put(ctx, s.key, v); err != nil {
		log.Error("failed to write cart", "err", err)
	}
}

// MarshalCart encodes the items of state in the stored cart format.
func MarshalCart(state domain.CartState) (string, error) {
	rs := make([]lineItemRecord, len(state.Items))
	for i, it := range state.Items {
		rs[i] = lineItemRecord{
			ID:       it.ProductID,
			Quantity: it.Quantity,
			Product: productRecord{
				ID:            it.Product.ID,
				Name:          it.Product.Name,
				Slug:          it.Product.Slug,
				Price:         it.Product.Price,
				StockQuantity: it.Product.StockQuantity,
			},
		}
	}
	b, err := json.Marshal(rs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalCart decodes a value produced by [MarshalCart].
func UnmarshalCart(v string) (domain.CartState, error) {
	var rs []lineItemRecord
	if err := json.Unmarshal([]byte(v), &rs); err != nil {
		return domain.CartState{}, err
	}
	if len(rs) == 0 {
		return domain.CartState{}, nil
	}

	items := make([]domain.LineItem, len(rs))
	for i, r := range rs {
		items[i] = domain.LineItem{
			ProductID: r.ID,
			Quantity:  r.Quantity,
			Product: domain.Product{
				ID:            r.Product.ID,
				Name:          r.Product.Name,
				Slug:          r.Product.Slug,
				Price:         r.Product.Price,
				StockQuantity: r.Product.StockQuantity,
			},
		}
	}
	return domain.CartState{Items: items}, nil
}
