package ratelimit

import (
	"context"
	"sync"
	"time"

	keylock "matricula/pkg/platform/sync"
)

// InMemoryStore keeps one sliding window per key. Keys are locked by shard so
// different clients do not contend on a single mutex.
type InMemoryStore struct {
	locks   *keylock.ShardedMutex
	mu      sync.RWMutex
	windows map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	hits   []time.Time
	window time.Duration
}

// tryConsume drops expired hits and records one more if capacity remains.
func (sw *slidingWindow) tryConsume(limit int, window time.Duration, now time.Time) (bool, int, time.Time) {
	sw.window = window
	sw.expire(now, window)
	if len(sw.hits) >= limit {
		return false, 0, sw.hits[0].Add(window)
	}
	sw.hits = append(sw.hits, now)
	return true, limit - len(sw.hits), sw.hits[0].Add(window)
}

func (sw *slidingWindow) expire(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.hits); i++ {
		if sw.hits[i].After(cutoff) {
			break
		}
	}
	sw.hits = sw.hits[i:]
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		locks:   keylock.NewShardedMutex(),
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	sw := s.window(key)
	now := s.now()
	allowed, remaining, resetAt := sw.tryConsume(limit, window, now)

	return &Result{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(allowed, resetAt, now),
	}, nil
}

func (s *InMemoryStore) window(key string) *slidingWindow {
	s.mu.RLock()
	sw, ok := s.windows[key]
	s.mu.RUnlock()
	if ok {
		return sw
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sw, ok = s.windows[key]; !ok {
		sw = &slidingWindow{}
		s.windows[key] = sw
	}
	return sw
}

// Sweep drops windows whose hits have all expired and reports how many were removed.
func (s *InMemoryStore) Sweep() int {
	s.mu.RLock()
	keys := make([]string, 0, len(s.windows))
	for key := range s.windows {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	now := s.now()
	removed := 0
	for _, key := range keys {
		if s.sweepKey(key, now) {
			removed++
		}
	}
	return removed
}

func (s *InMemoryStore) sweepKey(key string, now time.Time) bool {
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.windows[key]
	if !ok {
		return false
	}
	sw.expire(now, sw.window)
	if len(sw.hits) > 0 {
		return false
	}
	delete(s.windows, key)
	return true
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *InMemoryStore) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len reports how many keys currently hold a window.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}

// Reset forgets every window.
func (s *InMemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = make(map[string]*slidingWindow)
}
