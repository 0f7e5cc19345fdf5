// Package worker keeps the spreadsheet mirror in step with the store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"societyfund/internal/amqp"
)

// ReportPublisher rewrites the mirrored reports from the current store
// contents.
type ReportPublisher interface {
	Publish(ctx context.Context) error
}

// ChangeSource delivers entry-changed messages until ctx is cancelled.
type ChangeSource interface {
	ConsumeEntryChanges(ctx context.Context, handler func(context.Context, *amqp.EntryChangedMessage) error) error
}

const defaultClockSkew = 5 * time.Second

// SyncWorker republishes the reports after entry changes and on a fixed
// interval. A publish reads the whole store, so a change already covered by
// a later publish is skipped.
type SyncWorker struct {
	publisher ReportPublisher
	interval  time.Duration
	now       func() time.Time

	// clockSkew is how far the server's clock may trail the worker's.
	clockSkew time.Duration

	mu          sync.Mutex
	lastPublish time.Time
}

func NewSyncWorker(publisher ReportPublisher, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		publisher: publisher,
		interval:  interval,
		clockSkew: defaultClockSkew,
		now:       time.Now,
	}
}

// HandleEntryChanged publishes unless a publish that started after the
// change already ran. Publish failures are logged and left to the periodic
// sync so a broken spreadsheet does not requeue messages forever.
func (w *SyncWorker) HandleEntryChanged(ctx context.Context, msg *amqp.EntryChangedMessage) error {
	slog.InfoContext(ctx, "Processing entry change",
		"kind", msg.Kind,
		"op", msg.Op,
		"id", msg.ID)

	if w.coveredBy(w.changedBy(msg)) {
		slog.DebugContext(ctx, "Change already mirrored", "id", msg.ID, "timestamp", msg.Timestamp)
		return nil
	}

	if err := w.Sync(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.ErrorContext(ctx, "Failed to mirror entry change", "kind", msg.Kind, "id", msg.ID, "error", err)
	}
	return nil
}

// Sync publishes the reports now. Concurrent calls are serialized.
func (w *SyncWorker) Sync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	if err := w.publisher.Publish(ctx); err != nil {
		return err
	}
	w.lastPublish = started
	slog.InfoContext(ctx, "Reports mirrored", "duration", w.now().Sub(started))
	return nil
}

// changedBy bounds, on the worker's clock, when the change in msg happened.
// The server's timestamp is trusted only up to clockSkew; the receive time is
// always a valid bound.
func (w *SyncWorker) changedBy(msg *amqp.EntryChangedMessage) time.Time {
	received := w.now()
	if msg.Timestamp.IsZero() {
		return received
	}
	if stamped := msg.Timestamp.Add(w.clockSkew); stamped.Before(received) {
		return stamped
	}
	return received
}

func (w *SyncWorker) coveredBy(changedAt time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.lastPublish.IsZero() && !changedAt.After(w.lastPublish)
}

// Run performs a startup sync, then consumes changes from source (when not
// nil) and syncs on every interval tick until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, source ChangeSource) error {
	slog.InfoContext(ctx, "Performing startup sync...")
	if err := w.Sync(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if source != nil {
		g.Go(func() error {
			err := source.ConsumeEntryChanges(gctx, w.HandleEntryChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume entry changes: %w", err)
			}
			return nil
		})
	} else {
		slog.InfoContext(ctx, "No change source configured, relying on periodic sync")
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := w.Sync(gctx); err != nil && gctx.Err() == nil {
					slog.ErrorContext(gctx, "Periodic sync failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
