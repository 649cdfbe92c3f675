package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"billtracker/internal/amqp"
	"billtracker/internal/metrics"
	"billtracker/internal/ports"
)

// SyncWorker keeps a BillMirror in step with the record store. Every change
// message and every tick of the resync interval rewrites the whole mirror.
type SyncWorker struct {
	store    ports.BillReader
	mirror   ports.BillMirror
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time

	// syncMu serialises resyncs; lastSync is the start time of the last
	// successful one.
	syncMu   sync.Mutex
	lastSync time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncWorker(store ports.BillReader, mirror ports.BillMirror, m *metrics.Metrics, interval time.Duration) *SyncWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncWorker{
		store:    store,
		mirror:   mirror,
		metrics:  m,
		interval: interval,
		now:      time.Now,
	}
}

// HandleChange processes one bill change message. Messages older than the
// last successful resync are already reflected in the mirror and skipped.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.BillChangeMessage) error {
	slog.InfoContext(ctx, "Processing bill change message",
		"action", msg.Action,
		"bill_id", msg.ID,
		"bill_number", msg.BillNumber)

	last := w.LastSync()
	if !last.IsZero() && msg.Timestamp.Before(last) {
		slog.DebugContext(ctx, "Change already mirrored, skipping",
			"bill_id", msg.ID,
			"last_sync", last.Format(time.RFC3339Nano))
		return nil
	}

	if err := w.Resync(ctx); err != nil {
		return fmt.Errorf("mirror bill %d: %w", msg.ID, err)
	}
	return nil
}

// Resync reads every bill and replaces the mirror contents.
func (w *SyncWorker) Resync(ctx context.Context) error {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	started := w.now()
	bills, err := w.store.ListAll(ctx)
	if err != nil {
		w.metrics.MirrorSynced(err)
		return fmt.Errorf("list bills: %w", err)
	}

	if err := w.mirror.ReplaceAll(ctx, bills); err != nil {
		w.metrics.MirrorSynced(err)
		return fmt.Errorf("replace mirror: %w", err)
	}

	w.lastSync = started
	w.metrics.MirrorSynced(nil)
	slog.InfoContext(ctx, "Mirror synced", "bills", len(bills))
	return nil
}

// LastSync returns the start time of the last successful resync.
func (w *SyncWorker) LastSync() time.Time {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()
	return w.lastSync
}

// Start runs an immediate resync and then one per interval until Stop is
// called or ctx ends. Returns an error if already running.
func (w *SyncWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("sync worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Sync worker started", "interval", w.interval)
	return nil
}

// Stop ends the periodic loop and waits for it to finish.
func (w *SyncWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync worker stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the periodic loop is active.
func (w *SyncWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *SyncWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.periodic(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.periodic(ctx)
		}
	}
}

func (w *SyncWorker) periodic(ctx context.Context) {
	if err := w.Resync(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic resync failed", "error", err)
	}
}
