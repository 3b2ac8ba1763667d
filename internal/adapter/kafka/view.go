package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/candle-shop/internal/core/port"
)

var _ port.DemandView = (*DemandView)(nil)

// A DemandView reads the group table of [DemandProcessor].
type DemandView struct {
	gv *goka.View
}

func NewDemandView(seedBrokers []string, group string) (*DemandView, error) {
	const op = "NewDemandView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		new(codec.Int64),
		withNonlogViewOpt(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &DemandView{gv}, nil
}

// Run blocks until ctx is done or the view fails.
func (v *DemandView) Run(ctx context.Context) error {
	const op = "DemandView.Run"
	log := slog.With("op", op)

	log.Info("running")
	if err := v.gv.Run(ctx); err != nil {
		return opErr(err, op)
	}
	log.Info("stopped")
	return nil
}

// ProductDemand returns 0 for products never put into a cart.
func (v *DemandView) ProductDemand(
	ctx context.Context, productID string,
) (int64, error) {
	const op = "DemandView.ProductDemand"

	if err := ctx.Err(); err != nil {
		return 0, opErr(err, op)
	}

	val, err := v.gv.Get(productID)
	if err != nil {
		return 0, opErr(err, op)
	}
	if val == nil {
		return 0, nil
	}

	n, ok := val.(int64)
	if !ok {
		return 0, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, val), op,
		)
	}
	return n, nil
}
