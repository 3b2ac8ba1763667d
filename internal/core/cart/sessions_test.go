package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	loaded domain.CartState
	saved  []domain.CartState
	loads  int
}

func (s *fakeStore) Load(context.Context) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.loaded
}

func (s *fakeStore) Save(_ context.Context, state domain.CartState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, state)
}

type storeRegistry struct {
	mu     sync.Mutex
	stores map[string]*fakeStore
}

func newStoreRegistry() *storeRegistry {
	return &storeRegistry{stores: make(map[string]*fakeStore)}
}

func (r *storeRegistry) factory(sessionID string) port.CartStore {
	return r.store(sessionID)
}

func (r *storeRegistry) store(sessionID string) *fakeStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	if !ok {
		s = new(fakeStore)
		r.stores[sessionID] = s
	}
	return s
}

func TestSessionsGet(t *testing.T) {
	ctx := context.Background()

	t.Run("RestoresFromStore", func(t *testing.T) {
		reg := newStoreRegistry()
		reg.store("s1").loaded = domain.CartState{Items: []domain.LineItem{
			{ProductID: lavender.ID, Product: lavender, Quantity: 2},
		}}

		sessions := NewSessions(reg.factory, 0)
		c := sessions.Get(ctx, "s1")
		assert.Equal(t, 2, c.ItemQuantity(lavender.ID))
	})

	t.Run("ReturnsSameContainer", func(t *testing.T) {
		reg := newStoreRegistry()
		sessions := NewSessions(reg.factory, 0)

		c1 := sessions.Get(ctx, "s1")
		c2 := sessions.Get(ctx, "s1")
		assert.Same(t, c1, c2)
		assert.Equal(t, 1, reg.store("s1").loads)
		assert.Equal(t, 1, sessions.Len())
	})

	t.Run("SavesEveryChange", func(t *testing.T) {
		reg := newStoreRegistry()
		sessions := NewSessions(reg.factory, 0)

		c := sessions.Get(ctx, "s1")
		c.AddToCart(lavender, 1)
		c.AddToCart(cedar, 1)
		c.RemoveFromCart(lavender.ID)

		saved := reg.store("s1").saved
		require.Len(t, saved, 3)
		assert.Equal(t, c.State(), saved[2])
	})

	t.Run("IndependentSessions", func(t *testing.T) {
		reg := newStoreRegistry()
		sessions := NewSessions(reg.factory, 0)

		sessions.Get(ctx, "s1").AddToCart(lavender, 2)
		sessions.Get(ctx, "s2").AddToCart(cedar, 1)

		assert.False(t, sessions.Get(ctx, "s1").IsInCart(cedar.ID))
		assert.False(t, sessions.Get(ctx, "s2").IsInCart(lavender.ID))
		assert.Len(t, reg.store("s1").saved, 1)
		assert.Len(t, reg.store("s2").saved, 1)
	})

	t.Run("NotifiesSessionListeners", func(t *testing.T) {
		reg := newStoreRegistry()
		var got []string
		sessions := NewSessions(reg.factory, 0, func(sessionID string, ch domain.Change) {
			got = append(got, sessionID+":"+string(ch.Kind))
		})

		sessions.Get(ctx, "s1").AddOneToCart(lavender)
		sessions.Get(ctx, "s2").AddOneToCart(cedar)
		sessions.Get(ctx, "s1").ClearCart()

		assert.Equal(t, []string{"s1:added", "s2:added", "s1:cleared"}, got)
	})

	t.Run("ConcurrentGet", func(t *testing.T) {
		reg := newStoreRegistry()
		sessions := NewSessions(reg.factory, 0)

		var wg sync.WaitGroup
		carts := make([]*Container, 8)
		for i := range carts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				carts[i] = sessions.Get(ctx, "s1")
			}()
		}
		wg.Wait()

		for _, c := range carts[1:] {
			assert.Same(t, carts[0], c)
		}
	})
}

func TestSessionsForget(t *testing.T) {
	ctx := context.Background()
	reg := newStoreRegistry()
	sessions := NewSessions(reg.factory, 0)

	sessions.Get(ctx, "s1").AddToCart(lavender, 2)
	sessions.Forget("s1")
	assert.Zero(t, sessions.Len())

	reg.store("s1").loaded = reg.store("s1").saved[0]
	c := sessions.Get(ctx, "s1")
	assert.Equal(t, 2, c.ItemQuantity(lavender.ID))
	assert.Equal(t, 2, reg.store("s1").loads)
}

func TestSessionsBound(t *testing.T) {
	ctx := context.Background()
	reg := newStoreRegistry()
	sessions := NewSessions(reg.factory, 2)

	sessions.Get(ctx, "s1").AddToCart(lavender, 1)
	sessions.Get(ctx, "s2").AddToCart(cedar, 1)
	sessions.Get(ctx, "s1")
	sessions.Get(ctx, "s3")
	assert.Equal(t, 2, sessions.Len())

	t.Run("EvictsLeastRecentlyUsed", func(t *testing.T) {
		assert.Equal(t, 1, reg.store("s1").loads)
		reg.store("s2").loaded = reg.store("s2").saved[0]

		c := sessions.Get(ctx, "s2")
		assert.Equal(t, 2, reg.store("s2").loads)
		assert.Equal(t, 1, c.ItemQuantity(cedar.ID))
		assert.Equal(t, 2, sessions.Len())
	})

	t.Run("DefaultLimit", func(t *testing.T) {
		sessions := NewSessions(reg.factory, 0)
		for i := range DefaultMaxSessions + 10 {
			sessions.Get(ctx, fmt.Sprintf("anon-%d", i))
		}
		assert.Equal(t, DefaultMaxSessions, sessions.Len())
	})
}

func TestSessionsPeek(t *testing.T) {
	ctx := context.Background()

	t.Run("DoesNotRegister", func(t *testing.T) {
		reg := newStoreRegistry()
		reg.store("s1").loaded = domain.CartState{Items: []domain.LineItem{
			{ProductID: lavender.ID, Product: lavender, Quantity: 2},
		}}
		sessions := NewSessions(reg.factory, 0)

		c := sessions.Peek(ctx, "s1")
		assert.Equal(t, 2, c.ItemQuantity(lavender.ID))
		assert.Zero(t, sessions.Len())

		c.AddToCart(lavender, 1)
		assert.Empty(t, reg.store("s1").saved)
	})

	t.Run("ReturnsHeldCart", func(t *testing.T) {
		reg := newStoreRegistry()
		sessions := NewSessions(reg.factory, 0)

		held := sessions.Get(ctx, "s1")
		assert.Same(t, held, sessions.Peek(ctx, "s1"))
		assert.Equal(t, 1, reg.store("s1").loads)
	})
}
