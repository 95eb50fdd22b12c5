package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
	"github.com/VATuan2710/final-project-thuc-tap/internal/repository"
)

// pendingWrite is one full-state snapshot waiting to be persisted.
type pendingWrite struct {
	userID string
	lines  []domain.CartLine
	total  int64
}

// persistWriter is a single-slot write queue. Each Enqueue replaces any
// snapshot that has not started writing yet, so out-of-order completions
// are coalesced: the provider always receives the most recent full state,
// and a dropped stale snapshot cannot lose data because the newer one
// supersedes it.
//
// Write failures are logged, never surfaced: the in-memory cart stays
// authoritative and the next mutation re-sends the corrected full state.
type persistWriter struct {
	repo   repository.CartRepository
	logger *slog.Logger

	mu      sync.Mutex
	pending *pendingWrite
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newPersistWriter(repo repository.CartRepository, logger *slog.Logger) *persistWriter {
	w := &persistWriter{
		repo:   repo,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue replaces the pending snapshot with the given one and wakes the
// worker. Safe to call concurrently; no-op after Close.
func (w *persistWriter) Enqueue(userID string, lines []domain.CartLine, total int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending = &pendingWrite{userID: userID, lines: lines, total: total}

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker after flushing the latest pending write.
func (w *persistWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()

	<-w.done
}

func (w *persistWriter) run() {
	defer close(w.done)

	for range w.wake {
		w.flush()
	}
	// Final drain for a snapshot enqueued just before Close.
	w.flush()
}

func (w *persistWriter) flush() {
	for {
		w.mu.Lock()
		pw := w.pending
		w.pending = nil
		w.mu.Unlock()

		if pw == nil {
			return
		}

		// Fire-and-forget semantics: no caller is waiting, so there is no
		// timeout or cancellation at this layer.
		if err := w.repo.Write(context.Background(), pw.userID, pw.lines, pw.total); err != nil {
			w.logger.Error("background cart write failed",
				slog.String("user_id", pw.userID),
				slog.String("error", err.Error()),
			)
		}
	}
}
