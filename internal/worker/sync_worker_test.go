package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyfund/internal/amqp"
)

type countingPublisher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingPublisher) Publish(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *countingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type channelSource struct {
	msgs    chan *amqp.EntryChangedMessage
	handled chan error
}

func (s *channelSource) ConsumeEntryChanges(ctx context.Context, handler func(context.Context, *amqp.EntryChangedMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.msgs:
			s.handled <- handler(ctx, msg)
		}
	}
}

func TestSyncWorker_SkipsChangesCoveredByLaterPublish(t *testing.T) {
	p := &countingPublisher{}
	w := NewSyncWorker(p, time.Hour)
	clock := time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	ctx := context.Background()
	require.NoError(t, w.Sync(ctx))
	require.Equal(t, 1, p.count())

	old := &amqp.EntryChangedMessage{Kind: amqp.KindFund, Op: "create", ID: "f1", Timestamp: clock.Add(-time.Second)}
	require.NoError(t, w.HandleEntryChanged(ctx, old))
	assert.Equal(t, 1, p.count(), "change before the last publish must be skipped")

	newer := &amqp.EntryChangedMessage{Kind: amqp.KindExpense, Op: "update", ID: "e1", Timestamp: clock.Add(time.Second)}
	clock = clock.Add(2 * time.Second)
	require.NoError(t, w.HandleEntryChanged(ctx, newer))
	assert.Equal(t, 2, p.count())
}

func TestSyncWorker_ServerClockBehindDoesNotSkipChange(t *testing.T) {
	p := &countingPublisher{}
	w := NewSyncWorker(p, time.Hour)
	clock := time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	ctx := context.Background()
	require.NoError(t, w.Sync(ctx))

	// The change lands after the publish started, but the server's clock
	// trails the worker's by three seconds.
	clock = clock.Add(1500 * time.Millisecond)
	msg := &amqp.EntryChangedMessage{Kind: amqp.KindFund, Op: "update", ID: "f1", Timestamp: clock.Add(-3 * time.Second)}
	require.NoError(t, w.HandleEntryChanged(ctx, msg))
	assert.Equal(t, 2, p.count())
}

func TestSyncWorker_ChangedByUsesReceiveTimeAsBound(t *testing.T) {
	w := NewSyncWorker(&countingPublisher{}, time.Hour)
	now := time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	assert.Equal(t, now, w.changedBy(&amqp.EntryChangedMessage{}))
	assert.Equal(t, now, w.changedBy(&amqp.EntryChangedMessage{Timestamp: now.Add(-time.Second)}))
	assert.Equal(t, now.Add(-time.Minute+defaultClockSkew),
		w.changedBy(&amqp.EntryChangedMessage{Timestamp: now.Add(-time.Minute)}))
}

func TestSyncWorker_PublishFailureIsNotRequeued(t *testing.T) {
	p := &countingPublisher{err: errors.New("quota exceeded")}
	w := NewSyncWorker(p, time.Hour)

	msg := amqp.NewEntryChangedMessage(amqp.KindFund, "delete", "f1")
	require.NoError(t, w.HandleEntryChanged(context.Background(), msg))
	assert.Equal(t, 1, p.count())

	// A failed publish leaves nothing covered.
	require.NoError(t, w.HandleEntryChanged(context.Background(), msg))
	assert.Equal(t, 2, p.count())
}

func TestSyncWorker_CancelledHandlerRequeues(t *testing.T) {
	p := &countingPublisher{err: context.Canceled}
	w := NewSyncWorker(p, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.HandleEntryChanged(ctx, amqp.NewEntryChangedMessage(amqp.KindFund, "create", "f1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncWorker_RunConsumesAndStops(t *testing.T) {
	p := &countingPublisher{}
	w := NewSyncWorker(p, time.Hour)
	src := &channelSource{
		msgs:    make(chan *amqp.EntryChangedMessage),
		handled: make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, src) }()

	time.Sleep(10 * time.Millisecond)
	src.msgs <- &amqp.EntryChangedMessage{Kind: amqp.KindFund, Op: "create", ID: "f1", Timestamp: time.Now().Add(time.Minute)}
	require.NoError(t, <-src.handled)
	assert.Equal(t, 2, p.count(), "startup sync plus one change")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSyncWorker_RunPeriodic(t *testing.T) {
	p := &countingPublisher{}
	w := NewSyncWorker(p, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx, nil))
	assert.GreaterOrEqual(t, p.count(), 3)
}
