// Package tracker is the surface the rest of an application talks to: it
// composes the progress repository, the static catalog and the merge/stats
// functions into one object created by the composition root.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/cptrack/internal/catalog"
	"github.com/roach88/cptrack/internal/domain"
	"github.com/roach88/cptrack/internal/store"
)

// ErrUnknownProblem is returned by Solve for ids not in the catalog.
var ErrUnknownProblem = errors.New("unknown problem")

// Tracker tracks competitive programming progress for any number of users.
type Tracker struct {
	manager *store.Manager
	repo    *store.Repository
	catalog *catalog.Catalog
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the "now" used for weekly stats.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a Tracker. repo must be built on manager.
func New(manager *store.Manager, repo *store.Repository, cat *catalog.Catalog, opts ...Option) *Tracker {
	t := &Tracker{
		manager: manager,
		repo:    repo,
		catalog: cat,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Catalog returns the static problem catalog.
func (t *Tracker) Catalog() *catalog.Catalog {
	return t.catalog
}

// Initialize loads or creates the database. Idempotent. Every other method
// initializes on demand, so calling this first only moves the failure point.
func (t *Tracker) Initialize(ctx context.Context) error {
	_, err := t.manager.EnsureReady(ctx)
	return err
}

// ListProgress returns userID's progress records.
func (t *Tracker) ListProgress(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	return t.repo.GetProgress(ctx, userID)
}

// CompleteProblem records a completion with an explicit XP amount.
// It reports false when userID had already completed problemID.
// Ids that match a catalog problem are stored in the catalog's form; other
// ids are stored as given.
func (t *Tracker) CompleteProblem(ctx context.Context, userID, problemID string, xp int) (bool, error) {
	if p, ok := t.catalog.Lookup(problemID); ok {
		problemID = p.ID
	}
	return t.repo.MarkComplete(ctx, userID, problemID, xp)
}

// Completion is the outcome of Solve.
type Completion struct {
	ProblemID string `json:"problem_id"`
	Inserted  bool   `json:"inserted"`
	XPAwarded int    `json:"xp_awarded"`
}

// Solve records a completion of a catalog problem and awards XP per
// domain.RewardForCompletion, based on the user's count including this one.
// problemID may be in any Unicode normalization form; the row is stored
// under the catalog's id.
//
// The count and the insert are separate statements. Two concurrent Solves
// for the same user can both see the same count; the uniqueness of
// (user, problem) still holds, only the XP cadence can drift.
func (t *Tracker) Solve(ctx context.Context, userID, problemID string) (Completion, error) {
	p, ok := t.catalog.Lookup(problemID)
	if !ok {
		return Completion{}, fmt.Errorf("solve %q: %w", problemID, ErrUnknownProblem)
	}

	count, err := t.repo.CountProgress(ctx, userID)
	if err != nil {
		return Completion{}, err
	}

	xp := domain.RewardForCompletion(count + 1)
	inserted, err := t.repo.MarkComplete(ctx, userID, p.ID, xp)
	c := Completion{ProblemID: p.ID, Inserted: inserted}
	if inserted {
		c.XPAwarded = xp
	}
	return c, err
}

// GetDomainView merges the catalog with userID's progress and computes stats.
func (t *Tracker) GetDomainView(ctx context.Context, userID string) (domain.View, error) {
	records, err := t.repo.GetProgress(ctx, userID)
	if err != nil {
		return domain.View{}, err
	}
	return domain.View{
		Problems: domain.MergeCatalogWithProgress(t.catalog.Problems(), records),
		Stats:    domain.ComputeStats(records, t.now()),
	}, nil
}

// Flush retries saving the database after a persistence failure.
func (t *Tracker) Flush(ctx context.Context) error {
	return t.repo.Flush(ctx)
}

// Reset permanently discards all stored progress.
func (t *Tracker) Reset(ctx context.Context) error {
	return t.repo.Reset(ctx)
}

// Close releases the engine. Unsaved state is lost; under write-through
// there is none unless a save failed.
func (t *Tracker) Close() error {
	return t.manager.Close()
}
