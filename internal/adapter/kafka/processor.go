package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/niksmo/candle-shop/pkg/schema"
)

var _ port.DemandProcessor = (*DemandProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A cartEventCodec used for serde [schema.CartEventV1]
type cartEventCodec struct {
	serde Serde
}

func newCartEventCodec(s Serde) cartEventCodec {
	return cartEventCodec{s}
}

func (c cartEventCodec) Encode(v any) ([]byte, error) {
	const op = "cartEventCodec.Encode"
	if _, ok := v.(schema.CartEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c cartEventCodec) Decode(data []byte) (any, error) {
	const op = "cartEventCodec.Decode"
	var s schema.CartEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A DemandProcessor folds cart events into a group table holding, per
// product ID, the quantity currently sitting in carts.
type DemandProcessor struct {
	opPrefix string
	proc     processor
}

func NewDemandProc(
	seedBrokers []string,
	inputStream string,
	group string,
	cartEventSerde Serde,
) (*DemandProcessor, error) {
	const op = "NewDemandProc"

	p := DemandProcessor{opPrefix: "DemandProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newCartEventCodec(cartEventSerde),
			p.processFn,
		),
		goka.Persist(new(codec.Int64)),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	return &p, nil
}

func (p *DemandProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *DemandProcessor) Close() {
	p.proc.close()
}

func (p *DemandProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	event, ok := msg.(schema.CartEventV1)
	if !ok {
		return
	}
	log := slog.With(
		"op", makeOp(p.opPrefix, op), "productID", event.ProductID,
	)

	v := nextDemand(ctx.Value(), event.Delta)
	ctx.SetValue(v)
	log.Debug("demand updated", "kind", event.Kind, "demand", v)
}

// nextDemand applies delta to the stored value. Demand never drops below
// zero, events reaching the table out of order cannot make it negative.
func nextDemand(stored any, delta int64) int64 {
	cur, _ := stored.(int64)
	return max(cur+delta, 0)
}
