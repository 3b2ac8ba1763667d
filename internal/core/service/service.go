package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/candle-shop/internal/core/cart"
	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
)

var _ port.CartService = (*Service)(nil)

var (
	ErrProductNotFound   = domain.ErrProductNotFound
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDemandUnavailable = errors.New("demand is unavailable")
)

type Service struct {
	catalog  port.ProductReader
	demand   port.DemandReader
	sessions *cart.Sessions
	currency string
}

// New returns the cart service. The demand reader may be nil, then
// ProductDemand reports [ErrDemandUnavailable].
func New(
	catalog port.ProductReader,
	demand port.DemandReader,
	sessions *cart.Sessions,
	currency string,
) *Service {
	return &Service{
		catalog:  catalog,
		demand:   demand,
		sessions: sessions,
		currency: currency,
	}
}

func (s *Service) Cart(ctx context.Context, sessionID string) domain.CartSummary {
	return s.sessions.Peek(ctx, sessionID).Summary()
}

func (s *Service) AddToCart(
	ctx context.Context, sessionID, productID string, quantity int,
) (domain.CartSummary, error) {
	const op = "Service.AddToCart"

	if err := ctx.Err(); err != nil {
		return domain.CartSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.catalog.ReadProduct(ctx, productID)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	c := s.sessions.Get(ctx, sessionID)
	c.AddToCart(product, quantity)

	slog.Debug("added to cart",
		"op", op,
		"session", sessionID,
		"productID", productID,
		"quantity", c.ItemQuantity(productID),
	)
	return c.Summary(), nil
}

func (s *Service) RemoveFromCart(
	ctx context.Context, sessionID, productID string,
) domain.CartSummary {
	c := s.sessions.Get(ctx, sessionID)
	c.RemoveFromCart(productID)
	return c.Summary()
}

func (s *Service) UpdateQuantity(
	ctx context.Context, sessionID, productID string, quantity int,
) domain.CartSummary {
	c := s.sessions.Get(ctx, sessionID)
	c.UpdateQuantity(productID, quantity)
	return c.Summary()
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) domain.CartSummary {
	c := s.sessions.Get(ctx, sessionID)
	c.ClearCart()
	return c.Summary()
}

func (s *Service) ItemQuantity(
	ctx context.Context, sessionID, productID string,
) (bool, int) {
	c := s.sessions.Peek(ctx, sessionID)
	return c.IsInCart(productID), c.ItemQuantity(productID)
}

// Checkout builds the order request handed to the payment gateway.
func (s *Service) Checkout(
	ctx context.Context, sessionID string,
) (domain.OrderRequest, error) {
	const op = "Service.Checkout"

	if err := ctx.Err(); err != nil {
		return domain.OrderRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	summary := s.sessions.Peek(ctx, sessionID).Summary()
	if len(summary.Items) == 0 {
		return domain.OrderRequest{}, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	lines := make([]domain.OrderLine, len(summary.Items))
	for i, it := range summary.Items {
		lines[i] = domain.OrderLine{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.Price,
			LineTotal: float64(it.Quantity) * it.Product.Price,
		}
	}

	return domain.OrderRequest{
		SessionID:  sessionID,
		Lines:      lines,
		TotalItems: summary.TotalItems,
		TotalPrice: summary.TotalPrice,
		Currency:   s.currency,
	}, nil
}

func (s *Service) ProductDemand(
	ctx context.Context, productID string,
) (int64, error) {
	const op = "Service.ProductDemand"

	if s.demand == nil {
		return 0, fmt.Errorf("%s: %w", op, ErrDemandUnavailable)
	}

	n, err := s.demand.ProductDemand(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *Service) EndSession(sessionID string) {
	s.sessions.Forget(sessionID)
}
