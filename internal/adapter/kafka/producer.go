package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.CartEventsProducer = (*CartEventsProducer)(nil)

const flushTimeout = 5 * time.Second

// A CartEventsProducer publishes cart changes as [schema.CartEventV1]
// records keyed by product ID.
//
// Records are produced asynchronously, a cart mutation never waits for
// the broker. Delivery failures are logged.
type CartEventsProducer struct {
	opPrefix string
	cl       ProducerClient
	encoder  Encoder
	now      func() time.Time
}

func NewCartEventsProducer(
	opts ...ProducerOpt,
) (CartEventsProducer, error) {
	const op = "NewCartEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return CartEventsProducer{}, opErr(err, op)
		}
	}

	return CartEventsProducer{
		opPrefix: "CartEventsProducer",
		cl:       options.cl,
		encoder:  options.encoder,
		now:      time.Now,
	}, nil
}

func (p CartEventsProducer) Close() {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.cl.Flush(ctx); err != nil {
		log.Error("failed to flush buffered records", "err", err)
	}

	p.cl.Close()
	log.Info("producer is closed")
}

// ProduceChange matches the cart session listener signature.
func (p CartEventsProducer) ProduceChange(
	sessionID string, change domain.Change,
) {
	const op = "ProduceChange"
	log := slog.With("op", makeOp(p.opPrefix, op), "session", sessionID)

	rs, err := p.createRecords(sessionID, change)
	if err != nil {
		log.Error("failed to create records", "err", err)
		return
	}

	for _, r := range rs {
		p.cl.Produce(context.Background(), r, p.promise)
	}
}

func (p CartEventsProducer) promise(r *kgo.Record, err error) {
	if err == nil {
		return
	}
	const op = "promise"
	slog.Error(
		"failed to produce cart event",
		"op", makeOp(p.opPrefix, op),
		"productID", string(r.Key),
		"err", err,
	)
}

func (p CartEventsProducer) createRecords(
	sessionID string, change domain.Change,
) (rs []*kgo.Record, err error) {
	const op = "createRecords"

	for _, s := range changeToSchemaV1(sessionID, change, p.now()) {
		b, err := p.encoder.Encode(s)
		if err != nil {
			return nil, opErr(err, p.opPrefix, op)
		}
		rs = append(rs, &kgo.Record{Key: []byte(s.ProductID), Value: b})
	}
	return rs, nil
}
