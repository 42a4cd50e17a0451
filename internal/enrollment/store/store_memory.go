package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"matricula/internal/enrollment/models"
	"matricula/pkg/requestcontext"
)

// InMemoryStore keeps records for the process lifetime. Handlers run on
// parallel goroutines, so appends are serialized by mu.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
	ids     map[models.RecordID]struct{}
	newID   IDGenerator
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithIDGenerator overrides the record id source.
func WithIDGenerator(gen IDGenerator) MemoryOption {
	return func(s *InMemoryStore) {
		s.newID = gen
	}
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		ids:   make(map[models.RecordID]struct{}),
		newID: models.NewRecordID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(ctx context.Context, fields models.Fields) (*models.Record, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxIDAttempts {
		id := s.newID()
		if _, taken := s.ids[id]; taken {
			continue
		}
		record := models.NewRecord(id, fields, now)
		s.ids[id] = struct{}{}
		s.records = append(s.records, *record)
		return record, nil
	}
	return nil, fmt.Errorf("append enrollment: %w", errIDCollision)
}

// List returns a snapshot; callers may not observe later appends through it.
func (s *InMemoryStore) List(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return []models.Record{}, nil
	}
	return slices.Clone(s.records), nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Clear drops every record. Test helper.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.ids = make(map[models.RecordID]struct{})
}
