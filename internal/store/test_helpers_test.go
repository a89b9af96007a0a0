package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cptrack/internal/slot"
	"github.com/roach88/cptrack/internal/testutil"
)

var testEpoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// newTestManager creates a manager over backend and closes it on cleanup.
func newTestManager(t *testing.T, backend slot.Slot) *Manager {
	t.Helper()
	m := NewManager(slot.NewAdapter(backend, "test_db"))
	t.Cleanup(func() { m.Close() })
	return m
}

// newTestRepo creates a repository with a deterministic clock and ids.
func newTestRepo(t *testing.T, backend slot.Slot) (*Repository, *testutil.DeterministicClock) {
	t.Helper()
	clock := testutil.NewDeterministicClock(testEpoch)
	r := NewRepository(newTestManager(t, backend),
		WithClock(clock.Now),
		WithIDGenerator(testutil.NewSequenceGenerator("rec")),
	)
	return r, clock
}

// mustComplete marks a problem complete and requires a fresh insert.
func mustComplete(t *testing.T, r *Repository, userID, problemID string, xp int) {
	t.Helper()
	inserted, err := r.MarkComplete(context.Background(), userID, problemID, xp)
	require.NoError(t, err)
	require.True(t, inserted, "expected %s/%s to be a new completion", userID, problemID)
}

// rawSlotValue reads what is actually stored in the slot.
func rawSlotValue(t *testing.T, backend slot.Slot) string {
	t.Helper()
	v, ok, err := backend.Get(context.Background(), "test_db")
	require.NoError(t, err)
	require.True(t, ok, "slot is empty")
	return v
}
