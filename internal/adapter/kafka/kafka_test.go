package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducerClient struct {
	records []*kgo.Record
	flushed bool
	closed  bool
}

func (c *fakeProducerClient) Produce(
	_ context.Context, r *kgo.Record, promise func(*kgo.Record, error),
) {
	c.records = append(c.records, r)
	promise(r, nil)
}

func (c *fakeProducerClient) Flush(context.Context) error {
	c.flushed = true
	return nil
}

func (c *fakeProducerClient) Close() {
	c.closed = true
}

type MockSerde struct {
	mock.Mock
}

func (s *MockSerde) Encode(v any) ([]byte, error) {
	args := s.Called(v)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (s *MockSerde) Decode(data []byte, v any) error {
	args := s.Called(data, v)
	return args.Error(0)
}

func newTestProducer(cl ProducerClient, enc Encoder, at time.Time) CartEventsProducer {
	return CartEventsProducer{
		opPrefix: "CartEventsProducer",
		cl:       cl,
		encoder:  enc,
		now:      func() time.Time { return at },
	}
}

func TestCartEventsProducer(t *testing.T) {
	at := time.UnixMilli(1760400000000)

	t.Run("OneRecordPerDelta", func(t *testing.T) {
		cl := new(fakeProducerClient)
		enc := new(MockSerde)
		enc.On("Encode", mock.AnythingOfType("schema.CartEventV1")).
			Return([]byte("encoded"), nil)

		p := newTestProducer(cl, enc, at)
		p.ProduceChange("s1", domain.Change{
			Kind: domain.ChangeCleared,
			Deltas: []domain.ItemDelta{
				{ProductID: "amber", Delta: -2},
				{ProductID: "birch", Delta: 0},
				{ProductID: "cedar", Delta: -1},
			},
		})

		require.Len(t, cl.records, 2)
		assert.Equal(t, []byte("amber"), cl.records[0].Key)
		assert.Equal(t, []byte("cedar"), cl.records[1].Key)
		assert.Equal(t, []byte("encoded"), cl.records[0].Value)

		enc.AssertCalled(t, "Encode", schema.CartEventV1{
			SessionID: "s1",
			Kind:      "cleared",
			ProductID: "amber",
			Delta:     -2,
			At:        at.UnixMilli(),
		})
		enc.AssertNumberOfCalls(t, "Encode", 2)
	})

	t.Run("EncodeFailureProducesNothing", func(t *testing.T) {
		cl := new(fakeProducerClient)
		enc := new(MockSerde)
		enc.On("Encode", mock.Anything).Return(nil, errors.New("boom"))

		p := newTestProducer(cl, enc, at)
		p.ProduceChange("s1", domain.Change{
			Kind:   domain.ChangeAdded,
			Deltas: []domain.ItemDelta{{ProductID: "amber", Delta: 1}},
		})

		assert.Empty(t, cl.records)
	})

	t.Run("Close", func(t *testing.T) {
		cl := new(fakeProducerClient)
		p := newTestProducer(cl, new(MockSerde), at)
		p.Close()
		assert.True(t, cl.flushed)
		assert.True(t, cl.closed)
	})
}

func TestNextDemand(t *testing.T) {
	assert.Equal(t, int64(3), nextDemand(nil, 3))
	assert.Equal(t, int64(5), nextDemand(int64(2), 3))
	assert.Equal(t, int64(1), nextDemand(int64(4), -3))
	assert.Equal(t, int64(0), nextDemand(int64(1), -3))
}

func TestCartEventCodec(t *testing.T) {
	t.Run("EncodeRejectsOtherTypes", func(t *testing.T) {
		c := newCartEventCodec(new(MockSerde))
		_, err := c.Encode("not an event")
		assert.ErrorIs(t, err, ErrInvalidValueType)
	})

	t.Run("Decode", func(t *testing.T) {
		serde := new(MockSerde)
		serde.On("Decode", []byte("data"), mock.AnythingOfType("*schema.CartEventV1")).
			Run(func(args mock.Arguments) {
				v := args.Get(1).(*schema.CartEventV1)
				v.ProductID = "amber"
				v.Delta = 2
			}).
			Return(nil)

		c := newCartEventCodec(serde)
		v, err := c.Decode([]byte("data"))
		require.NoError(t, err)
		assert.Equal(t, schema.CartEventV1{ProductID: "amber", Delta: 2}, v)
	})

	t.Run("DecodeFailure", func(t *testing.T) {
		serde := new(MockSerde)
		serde.On("Decode", mock.Anything, mock.Anything).Return(errors.New("bad"))

		_, err := newCartEventCodec(serde).Decode([]byte("data"))
		assert.Error(t, err)
	})
}
