package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrQuotaExceeded is what FlakySlot returns from Set while failing.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrUnavailable is what FlakySlot returns from Get while failing.
	ErrUnavailable = errors.New("slot unavailable")
)

// Backend is the slot contract, restated to keep testutil free of imports.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// FlakySlot wraps a backend and fails reads or writes while the matching
// flag is set.
type FlakySlot struct {
	Backend
	FailReads  atomic.Bool
	FailWrites atomic.Bool
}

func (s *FlakySlot) Get(ctx context.Context, key string) (string, bool, error) {
	if s.FailReads.Load() {
		return "", false, ErrUnavailable
	}
	return s.Backend.Get(ctx, key)
}

func (s *FlakySlot) Set(ctx context.Context, key, value string) error {
	if s.FailWrites.Load() {
		return ErrQuotaExceeded
	}
	return s.Backend.Set(ctx, key, value)
}

// CountingSlot wraps a backend and counts calls.
type CountingSlot struct {
	Backend
	Gets atomic.Int64
	Sets atomic.Int64
}

func (s *CountingSlot) Get(ctx context.Context, key string) (string, bool, error) {
	s.Gets.Add(1)
	return s.Backend.Get(ctx, key)
}

func (s *CountingSlot) Set(ctx context.Context, key, value string) error {
	s.Sets.Add(1)
	return s.Backend.Set(ctx, key, value)
}

// GatedSlot blocks every Get until Release is called. Use it to line up
// concurrent first callers behind one slow bootstrap.
type GatedSlot struct {
	Backend
	once sync.Once
	gate chan struct{}
}

// NewGatedSlot wraps b with a closed-until-released gate.
func NewGatedSlot(b Backend) *GatedSlot {
	return &GatedSlot{Backend: b, gate: make(chan struct{})}
}

func (s *GatedSlot) Get(ctx context.Context, key string) (string, bool, error) {
	select {
	case <-s.gate:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	return s.Backend.Get(ctx, key)
}

// Release opens the gate. Safe to call more than once.
func (s *GatedSlot) Release() {
	s.once.Do(func() { close(s.gate) })
}
