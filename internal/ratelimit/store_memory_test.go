package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SlidingWindow(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 3 {
		res, err := store.Allow(ctx, "203.0.113.7", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := store.Allow(ctx, "203.0.113.7", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 60, res.RetryAfter)
	assert.Equal(t, now.Add(time.Minute), res.ResetAt)

	t.Run("other keys are independent", func(t *testing.T) {
		res, err := store.Allow(ctx, "198.51.100.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("hits expire after the window", func(t *testing.T) {
		now = now.Add(time.Minute + time.Second)
		res, err := store.Allow(ctx, "203.0.113.7", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Remaining)
	})

	t.Run("reset clears windows", func(t *testing.T) {
		store.Reset()
		res, err := store.Allow(ctx, "203.0.113.7", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}

func TestRetryAfterIsAtLeastOneSecond(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0, retryAfterSeconds(true, now, now))
	assert.Equal(t, 1, retryAfterSeconds(false, now.Add(200*time.Millisecond), now))
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{Limit: 5}.Enabled())
	assert.True(t, Config{Limit: 5, Window: time.Minute}.Enabled())
}

func TestInMemoryStore_SweepDropsIdleWindows(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		_, err := store.Allow(ctx, ip, 5, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, store.Len())

	assert.Zero(t, store.Sweep(), "live windows are kept")

	now = now.Add(30 * time.Second)
	_, err := store.Allow(ctx, "203.0.113.2", 5, time.Minute)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	assert.Equal(t, 2, store.Sweep())
	assert.Equal(t, 1, store.Len())

	res, err := store.Allow(ctx, "203.0.113.2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Zero(t, res.Remaining, "the surviving hit still counts")
}

func TestInMemoryStore_RunSweeperStopsOnCancel(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Allow(context.Background(), "203.0.113.9", 1, time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.RunSweeper(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
