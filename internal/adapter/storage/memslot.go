package storage

import (
	"context"
	"sync"

	"github.com/niksmo/candle-shop/internal/core/port"
)

var _ port.Slot = (*MemorySlot)(nil)

// A MemorySlot keeps values for the lifetime of the process.
type MemorySlot struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{vals: make(map[string]string)}
}

func (s *MemorySlot) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vals[key]
	return v, ok, nil
}

func (s *MemorySlot) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	return nil
}
