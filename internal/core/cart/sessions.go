package cart

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/niksmo/candle-shop/internal/core/domain"
	"github.com/niksmo/candle-shop/internal/core/port"
)

// DefaultMaxSessions bounds the in-memory carts when no limit is set.
const DefaultMaxSessions = 10_000

// A StoreFactory returns the store that persists the cart of a session.
type StoreFactory func(sessionID string) port.CartStore

// A SessionListener is notified about changes of any session cart.
type SessionListener func(sessionID string, change domain.Change)

// Sessions keeps one container per session.
//
// At most maxSessions carts stay in memory, the least recently used one is
// dropped first. Every change is saved, so a dropped cart is restored from
// its store by the next Get.
//
// Carts of different sessions are independent. Two sessions persisted
// under the same key overwrite each other, the last save wins.
type Sessions struct {
	mu        sync.Mutex
	newStore  StoreFactory
	listeners []SessionListener
	carts     *lru.Cache[string, *Container]
}

// NewSessions returns an empty registry. A non-positive maxSessions
// takes [DefaultMaxSessions].
func NewSessions(
	newStore StoreFactory, maxSessions int, listeners ...SessionListener,
) *Sessions {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	carts, err := lru.New[string, *Container](maxSessions)
	if err != nil {
		panic(err) // develop mistake
	}
	return &Sessions{
		newStore:  newStore,
		listeners: listeners,
		carts:     carts,
	}
}

// Get returns the session cart, restoring it from its store on first use.
func (s *Sessions) Get(ctx context.Context, sessionID string) *Container {
	if c, ok := s.carts.Get(sessionID); ok {
		return c
	}

	store := s.newStore(sessionID)
	c := New(store.Load(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.carts.Get(sessionID); ok {
		return existing
	}

	c.Subscribe(func(ch domain.Change) {
		store.Save(context.Background(), ch.State)
	})
	for _, l := range s.listeners {
		c.Subscribe(func(ch domain.Change) { l(sessionID, ch) })
	}
	s.carts.Add(sessionID, c)
	return c
}

// Peek returns the session cart for reading. A cart not held in memory is
// restored from its store without being registered, so mutations of the
// returned container are neither saved nor published.
func (s *Sessions) Peek(ctx context.Context, sessionID string) *Container {
	if c, ok := s.carts.Peek(sessionID); ok {
		return c
	}
	return New(s.newStore(sessionID).Load(ctx))
}

// Forget drops the in-memory cart of a session. The persisted cart is
// kept and restored by the next Get.
func (s *Sessions) Forget(sessionID string) {
	s.carts.Remove(sessionID)
}

func (s *Sessions) Len() int {
	return s.carts.Len()
}
