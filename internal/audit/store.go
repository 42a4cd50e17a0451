package audit

import (
	"context"
	"slices"
	"sync"
)

// DefaultRetention is how many events InMemoryStore keeps by default.
const DefaultRetention = 1000

type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// InMemoryStore keeps the most recent events; older ones are dropped once
// the retention limit is reached.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []Event
	retention int
}

type StoreOption func(*InMemoryStore)

// WithRetention caps the number of retained events. Non-positive values keep the default.
func WithRetention(n int) StoreOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.retention = n
		}
	}
}

func NewInMemoryStore(opts ...StoreOption) *InMemoryStore {
	s := &InMemoryStore{retention: DefaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) >= s.retention {
		s.events = slices.Delete(s.events, 0, len(s.events)-s.retention+1)
	}
	s.events = append(s.events, event)
	return nil
}

// List returns the retained events, oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return []Event{}, nil
	}
	return slices.Clone(s.events), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
