package cart

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATuan2710/final-project-thuc-tap/internal/domain"
)

func TestPersistWriter_FlushesLatestSnapshot(t *testing.T) {
	repo := newFakeRepo()
	w := newPersistWriter(repo, testLogger())

	w.Enqueue("user-1", []domain.CartLine{line("p1", 1, 10_000)}, 10_000)
	w.Close()

	rec := repo.doc("user-1")
	require.NotNil(t, rec)
	assert.Equal(t, int64(10_000), rec.Total)
}

func TestPersistWriter_CoalescesWhileWriteInFlight(t *testing.T) {
	repo := newFakeRepo()
	gate := make(chan struct{})
	repo.writeGate = gate
	w := newPersistWriter(repo, testLogger())

	// First enqueue starts a write that blocks on the gate.
	w.Enqueue("user-1", []domain.CartLine{line("p1", 1, 10_000)}, 10_000)

	// Wait until the worker has picked the snapshot up.
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.pending == nil
	}, time.Second, time.Millisecond)

	// These stack up behind the in-flight write; only the last survives.
	w.Enqueue("user-1", []domain.CartLine{line("p1", 2, 10_000)}, 20_000)
	w.Enqueue("user-1", []domain.CartLine{line("p1", 3, 10_000)}, 30_000)
	w.Enqueue("user-1", []domain.CartLine{line("p1", 4, 10_000)}, 40_000)

	close(gate)
	w.Close()

	assert.Equal(t, 2, repo.writeCount(), "intermediate snapshots must be coalesced")

	rec := repo.doc("user-1")
	require.NotNil(t, rec)
	assert.Equal(t, int64(40_000), rec.Total)
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, 4, rec.Lines[0].Quantity)
}

func TestPersistWriter_CloseFlushesPending(t *testing.T) {
	repo := newFakeRepo()
	gate := make(chan struct{})
	repo.writeGate = gate
	w := newPersistWriter(repo, testLogger())

	w.Enqueue("user-1", []domain.CartLine{line("p1", 1, 10_000)}, 10_000)
	w.Enqueue("user-1", []domain.CartLine{line("p1", 5, 10_000)}, 50_000)

	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()

	close(gate)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	rec := repo.doc("user-1")
	require.NotNil(t, rec)
	assert.Equal(t, int64(50_000), rec.Total)
}

func TestPersistWriter_EnqueueAfterCloseIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	w := newPersistWriter(repo, testLogger())
	w.Close()

	w.Enqueue("user-1", []domain.CartLine{line("p1", 1, 10_000)}, 10_000)

	assert.Zero(t, repo.writeCount())
}

func TestPersistWriter_WriteFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.writeErr = errors.New("provider unreachable")
	w := newPersistWriter(repo, testLogger())

	w.Enqueue("user-1", []domain.CartLine{line("p1", 1, 10_000)}, 10_000)
	w.Close()

	// The write was attempted; the failure is logged and dropped.
	assert.Equal(t, 1, repo.writeCount())
	assert.Nil(t, repo.doc("user-1"))
}
