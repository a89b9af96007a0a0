package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cptrack/internal/catalog"
	"github.com/roach88/cptrack/internal/slot"
	"github.com/roach88/cptrack/internal/store"
	"github.com/roach88/cptrack/internal/testutil"
)

var (
	completionStart = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	viewNow         = time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
)

const testCatalog = `
cp_problems:
  - {id: a, name: Alpha, description: first}
  - {id: b, name: Beta, description: second}
  - {id: c, name: Gamma, description: third}
  - {id: d, name: Delta, description: fourth}
  - {id: e, name: Epsilon, description: fifth}
  - {id: f, name: Zeta, description: sixth}
`

// newTestTracker wires a tracker over backend the way cmd/cptrack does.
func newTestTracker(t *testing.T, backend slot.Slot) *Tracker {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	m := store.NewManager(slot.NewAdapter(backend, "cp"))
	repo := store.NewRepository(m,
		store.WithClock(testutil.NewDeterministicClock(completionStart).Now),
		store.WithIDGenerator(testutil.NewSequenceGenerator("rec")),
	)
	tr := New(m, repo, cat, WithClock(func() time.Time { return viewNow }))
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestInitialize_Idempotent(t *testing.T) {
	ctx := context.Background()
	backend := &testutil.CountingSlot{Backend: slot.NewMemory()}
	tr := newTestTracker(t, backend)

	require.NoError(t, tr.Initialize(ctx))
	require.NoError(t, tr.Initialize(ctx))

	assert.EqualValues(t, 1, backend.Gets.Load())
	assert.EqualValues(t, 1, backend.Sets.Load())
}

func TestInitialize_CorruptSlot(t *testing.T) {
	ctx := context.Background()
	backend := slot.NewMemory()
	require.NoError(t, backend.Set(ctx, "cp", "@@@"))
	tr := newTestTracker(t, backend)

	err := tr.Initialize(ctx)
	require.Error(t, err)
	assert.True(t, store.IsInitializationError(err))

	_, err = tr.GetDomainView(ctx, "u1")
	assert.True(t, store.IsInitializationError(err))

	require.NoError(t, tr.Reset(ctx))
	require.NoError(t, tr.Initialize(ctx))
}

func TestCompleteProblem_TwiceKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, slot.NewMemory())

	first, err := tr.CompleteProblem(ctx, "u1", "a", 0)
	require.NoError(t, err)
	assert.True(t, first)
	before, err := tr.ListProgress(ctx, "u1")
	require.NoError(t, err)

	second, err := tr.CompleteProblem(ctx, "u1", "a", 0)
	require.NoError(t, err)
	assert.False(t, second)
	after, err := tr.ListProgress(ctx, "u1")
	require.NoError(t, err)

	assert.Len(t, after, len(before))
	assert.Len(t, after, 1)
}

func TestSolve_XPCadence(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, slot.NewMemory())

	var awarded []int
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		c, err := tr.Solve(ctx, "u1", id)
		require.NoError(t, err)
		require.True(t, c.Inserted)
		awarded = append(awarded, c.XPAwarded)
	}

	assert.Equal(t, []int{0, 0, 1, 0, 0, 1}, awarded)

	view, err := tr.GetDomainView(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.TotalXP)
	assert.Equal(t, 6, view.Stats.TotalSolved)
}

func TestSolve_RepeatAwardsNothing(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, slot.NewMemory())

	for _, id := range []string{"a", "b"} {
		_, err := tr.Solve(ctx, "u1", id)
		require.NoError(t, err)
	}

	// Third distinct-looking call repeats "b": the would-be count is 3 but
	// nothing is inserted, so no XP.
	c, err := tr.Solve(ctx, "u1", "b")
	require.NoError(t, err)
	assert.False(t, c.Inserted)
	assert.Zero(t, c.XPAwarded)

	c, err = tr.Solve(ctx, "u1", "c")
	require.NoError(t, err)
	assert.Equal(t, 1, c.XPAwarded)
}

func TestSolve_UnknownProblem(t *testing.T) {
	tr := newTestTracker(t, slot.NewMemory())

	_, err := tr.Solve(context.Background(), "u1", "not-in-catalog")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProblem)
}

func TestSolve_PersistenceFailureStillReportsXP(t *testing.T) {
	ctx := context.Background()
	backend := &testutil.FlakySlot{Backend: slot.NewMemory()}
	tr := newTestTracker(t, backend)
	require.NoError(t, tr.Initialize(ctx))

	backend.FailWrites.Store(true)
	c, err := tr.Solve(ctx, "u1", "a")
	require.Error(t, err)
	assert.True(t, store.IsPersistenceError(err))
	assert.True(t, c.Inserted)

	backend.FailWrites.Store(false)
	require.NoError(t, tr.Flush(ctx))
}

func TestPersistence_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := slot.NewFile(dir)
	require.NoError(t, err)
	tr := newTestTracker(t, backend)
	inserted, err := tr.CompleteProblem(ctx, "u1", "c", 0)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, tr.Close())

	// New process: new slot handle, new manager, same directory.
	backend2, err := slot.NewFile(dir)
	require.NoError(t, err)
	tr2 := newTestTracker(t, backend2)
	records, err := tr2.ListProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c", records[0].ProblemID)
	assert.Equal(t, completionStart, records[0].CompletedDate)
}

func TestGetDomainView_FreshUser(t *testing.T) {
	tr := newTestTracker(t, slot.NewMemory())

	view, err := tr.GetDomainView(context.Background(), "new-user")
	require.NoError(t, err)

	require.Len(t, view.Problems, tr.Catalog().Len())
	for _, p := range view.Problems {
		assert.False(t, p.Completed)
	}
	assert.Zero(t, view.Stats.TotalSolved)
}

func TestGetDomainView_OrphansCountInStatsOnly(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, slot.NewMemory())

	_, err := tr.CompleteProblem(ctx, "u1", "retired", 1)
	require.NoError(t, err)

	view, err := tr.GetDomainView(ctx, "u1")
	require.NoError(t, err)
	for _, p := range view.Problems {
		assert.NotEqual(t, "retired", p.ID)
		assert.False(t, p.Completed)
	}
	assert.Equal(t, 1, view.Stats.TotalSolved)
	assert.Equal(t, 1, view.Stats.TotalXP)
}

func TestGetDomainView_Golden(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, slot.NewMemory())

	for _, id := range []string{"c", "a", "b"} {
		_, err := tr.Solve(ctx, "u1", id)
		require.NoError(t, err)
	}
	_, err := tr.CompleteProblem(ctx, "u1", "retired", 0)
	require.NoError(t, err)
	_, err = tr.Solve(ctx, "someone-else", "d")
	require.NoError(t, err)

	view, err := tr.GetDomainView(ctx, "u1")
	require.NoError(t, err)

	got, err := json.MarshalIndent(view, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "domain_view", got)
}

func ExampleTracker_Solve() {
	ctx := context.Background()
	cat, _ := catalog.Default()
	m := store.NewManager(slot.NewAdapter(slot.NewMemory(), slot.DefaultKey))
	tr := New(m, store.NewRepository(m), cat)
	defer tr.Close()

	for _, id := range []string{"two-sum", "binary-search", "knapsack"} {
		c, _ := tr.Solve(ctx, "alice", id)
		fmt.Println(c.ProblemID, c.XPAwarded)
	}
	// Output:
	// two-sum 0
	// binary-search 0
	// knapsack 1
}

func TestSolve_NormalizationFormsShareOneRecord(t *testing.T) {
	const (
		composed   = "caf\u00e9"
		decomposed = "cafe\u0301"
	)
	ctx := context.Background()
	// The catalog file spells the id decomposed; the catalog stores it composed.
	cat, err := catalog.Parse([]byte("cp_problems:\n  - {id: \"" + decomposed + "\", name: Cafe, description: accents}\n  - {id: plain, name: Plain, description: ascii}\n"))
	require.NoError(t, err)

	m := store.NewManager(slot.NewAdapter(slot.NewMemory(), "cp"))
	repo := store.NewRepository(m)
	tr := New(m, repo, cat, WithClock(func() time.Time { return viewNow }))
	t.Cleanup(func() { tr.Close() })

	first, err := tr.Solve(ctx, "u1", decomposed)
	require.NoError(t, err)
	assert.True(t, first.Inserted)
	assert.Equal(t, composed, first.ProblemID)

	second, err := tr.Solve(ctx, "u1", composed)
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, 0, second.XPAwarded)

	inserted, err := tr.CompleteProblem(ctx, "u1", decomposed, 3)
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := tr.ListProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, composed, records[0].ProblemID)

	view, err := tr.GetDomainView(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.TotalSolved)
	require.Len(t, view.Problems, 2)
	assert.Equal(t, composed, view.Problems[0].ID)
	assert.True(t, view.Problems[0].Completed)
	assert.False(t, view.Problems[1].Completed)
}
