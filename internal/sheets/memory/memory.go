package memory

import (
	"context"
	"fmt"
	"sync"

	"climbreg/internal/core"
)

// Store is an in-memory registration table for development and tests.
type Store struct {
	mu    sync.Mutex
	items []core.Registration
}

func New() *Store {
	return &Store{}
}

// Append stores the registration and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.Registration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// All returns a copy of the table in append order.
func (s *Store) All(_ context.Context) ([]core.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Registration, len(s.items))
	copy(out, s.items)
	return out, nil
}
