package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/roach88/cptrack/internal/logger"
)

// Repository is the typed query and command API over progress rows.
//
// Every method waits for the Manager's engine to be ready. Mutations are
// written through to the slot before they return.
type Repository struct {
	manager *Manager
	ids     IDGenerator
	now     func() time.Time
	log     *logger.Logger

	// writeMu orders mutation+save pairs so a slower save never overwrites
	// a newer image.
	writeMu sync.Mutex
}

// RepoOption configures a Repository.
type RepoOption func(*Repository)

// WithClock overrides the time source for completion timestamps.
func WithClock(now func() time.Time) RepoOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the id generator. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) RepoOption {
	return func(r *Repository) {
		if g != nil {
			r.ids = g
		}
	}
}

// NewRepository creates a repository over the manager's engine.
func NewRepository(m *Manager, opts ...RepoOption) *Repository {
	r := &Repository{
		manager: m,
		ids:     UUIDv7Generator{},
		now:     time.Now,
		log:     m.log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Flush exports the current image and saves it. Use it to retry after a
// PERSISTENCE_WRITE error without repeating the mutation.
func (r *Repository) Flush(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	e, release, err := r.manager.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return r.manager.persist(ctx, e)
}

// Reset discards all progress. See Manager.Reset. Reads already running on
// the old engine finish before it is closed.
func (r *Repository) Reset(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.manager.Reset(ctx)
}

func requireID(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return newError(ErrCodeInvalidArgument, op, field+" is required", nil)
	}
	return nil
}
