package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matricula/internal/platform/kafka/producer"
	"matricula/pkg/platform/circuit"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(_ context.Context, _ Event) error {
	return s.err
}

func (s *failingStore) List(_ context.Context) ([]Event, error) {
	return nil, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Send(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func TestPublisher_EmitStoresEvent(t *testing.T) {
	pub := NewPublisher(NewInMemoryStore())

	err := pub.Emit(context.Background(), Event{Action: "enrollment_submitted", Subject: "abc"})
	require.NoError(t, err)

	events, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "enrollment_submitted", events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	pub := NewPublisher(NewInMemoryStore())
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(context.Background(), Event{Action: "x", Timestamp: customTime}))

	events, err := pub.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_EmitReturnsStoreError(t *testing.T) {
	storeErr := errors.New("append failed")
	sink := &recordingSink{}
	pub := NewPublisher(&failingStore{err: storeErr}, WithSink(sink))

	err := pub.Emit(context.Background(), Event{Action: "x"})

	require.ErrorIs(t, err, storeErr)
	assert.Empty(t, sink.events, "sinks only see persisted events")
}

func TestPublisher_SinkFailureDoesNotFailEmit(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	pub := NewPublisher(NewInMemoryStore(), WithSink(sink))

	err := pub.Emit(context.Background(), Event{Action: "x"})

	require.NoError(t, err)
	assert.Len(t, sink.events, 1)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	sink := &recordingSink{}
	pub := NewPublisher(store, WithAsyncBuffer(16), WithSink(sink))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), Event{Action: "x"}))
	}
	pub.Close()

	events, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 10)
	assert.Len(t, sink.events, 10)
}

type fakeProducer struct {
	messages []*producer.Message
}

func (p *fakeProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

func TestKafkaSink_Send(t *testing.T) {
	prod := &fakeProducer{}
	sink := NewKafkaSink(prod, "enrollments")

	err := sink.Send(context.Background(), Event{
		Action:    "enrollment_submitted",
		Subject:   "rec-1",
		RequestID: "req-1",
		Decision:  "accepted",
	})

	require.NoError(t, err)
	require.Len(t, prod.messages, 1)
	msg := prod.messages[0]
	assert.Equal(t, "enrollments", msg.Topic)
	assert.Equal(t, []byte("rec-1"), msg.Key)
	assert.Equal(t, "enrollment_submitted", msg.Headers["action"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "accepted", decoded.Decision)
}

func TestClientSummary(t *testing.T) {
	assert.Equal(t, "Unknown Device", ClientSummary(""))
	assert.Equal(t, "Unknown Device", ClientSummary("   "))

	desktop := ClientSummary("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.True(t, strings.HasPrefix(desktop, "Chrome on "), desktop)
	assert.Contains(t, desktop, "Linux")

	bot := ClientSummary("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.True(t, strings.HasSuffix(bot, "(bot)"), bot)
}

type countingSink struct {
	calls int
	err   error
}

func (s *countingSink) Send(_ context.Context, _ Event) error {
	s.calls++
	return s.err
}

func TestGuardedSink_StopsCallingFailingSink(t *testing.T) {
	inner := &countingSink{err: errors.New("broker unreachable")}
	guarded := NewGuardedSink(inner, nil, circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))

	for range 5 {
		_ = guarded.Send(context.Background(), Event{Action: "enrollment_submitted"})
	}

	assert.Equal(t, 2, inner.calls)
	assert.ErrorIs(t, guarded.Send(context.Background(), Event{}), circuit.ErrOpen)
}
