package store

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/cptrack/internal/codec"
	"github.com/roach88/cptrack/internal/logger"
	"github.com/roach88/cptrack/internal/slot"
)

// Manager owns the single engine instance for a process and the slot that
// makes it durable.
//
// Thread-safety: all methods are safe for concurrent use. Two processes
// sharing one slot are not coordinated; the last save wins.
type Manager struct {
	adapter *slot.Adapter
	log     *logger.Logger

	boot singleflight.Group

	mu     sync.RWMutex
	engine *Engine

	// inUse is held shared while a query runs on the engine and exclusively
	// while Reset or Close retires it.
	inUse sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager creates a Manager backed by adapter. Nothing is loaded until
// the first EnsureReady.
func NewManager(adapter *slot.Adapter, opts ...Option) *Manager {
	m := &Manager{
		adapter: adapter,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("slot_key", adapter.Key())
	return m
}

// EnsureReady returns the engine, bootstrapping it on first use.
//
// Concurrent first callers wait on the same bootstrap and receive the same
// engine. A failed bootstrap is returned to every waiter and is not cached:
// the next call tries again from the slot.
//
// The bootstrap itself ignores cancellation of ctx. A caller whose ctx ends
// while waiting gets a CANCELED error; other waiters are unaffected and the
// engine is still installed when the bootstrap finishes.
func (m *Manager) EnsureReady(ctx context.Context) (*Engine, error) {
	if e := m.current(); e != nil {
		return e, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(ErrCodeCanceled, "bootstrap", "wait for engine", err)
	}

	bootCtx := context.WithoutCancel(ctx)
	ch := m.boot.DoChan("engine", func() (any, error) {
		if e := m.current(); e != nil {
			return e, nil
		}

		e, err := m.bootstrap(bootCtx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.engine != nil {
			// Reset installed an engine while we were loading.
			e.Close()
			return m.engine, nil
		}
		m.engine = e
		return e, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Engine), nil
	case <-ctx.Done():
		return nil, newError(ErrCodeCanceled, "bootstrap", "wait for engine", ctx.Err())
	}
}

// acquire returns the ready engine and keeps Reset and Close from retiring
// it until release is called. Calls must not nest.
func (m *Manager) acquire(ctx context.Context) (*Engine, func(), error) {
	for {
		e, err := m.EnsureReady(ctx)
		if err != nil {
			return nil, nil, err
		}
		m.inUse.RLock()
		if m.current() == e {
			return e, m.inUse.RUnlock, nil
		}
		// Retired between EnsureReady and RLock.
		m.inUse.RUnlock()
	}
}

// Ready reports whether an engine is loaded.
func (m *Manager) Ready() bool {
	return m.current() != nil
}

func (m *Manager) current() *Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

func (m *Manager) bootstrap(ctx context.Context) (*Engine, error) {
	const op = "bootstrap"

	e, err := openEngine(ctx)
	if err != nil {
		m.log.Error("engine open failed", "error", err)
		return nil, newError(ErrCodeInitialization, op, "open engine", err)
	}

	encoded, ok, err := m.adapter.Load(ctx)
	if err != nil {
		e.Close()
		m.log.Error("slot load failed", "error", err)
		return nil, newError(initCode(err), op, "load image", err)
	}

	if !ok {
		if err := m.initFresh(ctx, e); err != nil {
			e.Close()
			return nil, err
		}
		m.log.Info("created new progress database")
		return e, nil
	}

	image, err := codec.Decode(encoded)
	if err != nil {
		e.Close()
		m.log.Error("stored image is undecodable", "error", err, "encoded_len", len(encoded))
		return nil, newError(ErrCodeInitialization, op, "decode image", err)
	}
	if err := e.restore(ctx, image); err != nil {
		e.Close()
		m.log.Error("stored image is corrupt", "error", err, "bytes", len(image))
		return nil, newError(ErrCodeInitialization, op, "restore image", err)
	}
	if err := e.checkVersion(ctx); err != nil {
		e.Close()
		m.log.Error("stored image version unsupported", "error", err)
		return nil, newError(ErrCodeInitialization, op, "check version", err)
	}
	if err := e.applySchema(ctx); err != nil {
		e.Close()
		return nil, newError(ErrCodeInitialization, op, "apply schema", err)
	}

	m.log.Info("restored progress database", "bytes", len(image))
	return e, nil
}

// initCode reports context errors from slot I/O as CANCELED so a timeout is
// not mistaken for a corrupt image.
func initCode(err error) ErrorCode {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeCanceled
	}
	return ErrCodeInitialization
}

// initFresh creates the schema on an empty engine and saves it right away.
func (m *Manager) initFresh(ctx context.Context, e *Engine) error {
	if err := e.applySchema(ctx); err != nil {
		return newError(ErrCodeInitialization, "bootstrap", "apply schema", err)
	}
	return m.persist(ctx, e)
}

// persist exports e and overwrites the slot with it.
func (m *Manager) persist(ctx context.Context, e *Engine) error {
	image, err := e.Export(ctx)
	if err != nil {
		m.log.Error("export failed", "error", err)
		return newError(ErrCodePersistenceWrite, "persist", "export image", err)
	}
	if err := m.adapter.Save(ctx, image); err != nil {
		m.log.Error("slot write failed", "error", err, "bytes", len(image))
		return newError(ErrCodePersistenceWrite, "persist", "save image", err)
	}
	m.log.Debug("saved progress database", "bytes", len(image))
	return nil
}

// Reset discards all stored progress: it builds an empty database, saves it
// over the slot and swaps it in. This is the explicit recovery path after an
// INITIALIZATION error.
//
// If the save fails the previous engine (if any) stays in place.
func (m *Manager) Reset(ctx context.Context) error {
	fresh, err := openEngine(ctx)
	if err != nil {
		return newError(ErrCodeInitialization, "reset", "open engine", err)
	}
	if err := m.initFresh(ctx, fresh); err != nil {
		fresh.Close()
		return err
	}

	m.inUse.Lock()
	m.mu.Lock()
	old := m.engine
	m.engine = fresh
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}
	m.inUse.Unlock()
	m.log.Warn("progress database reset")
	return nil
}

// Close closes the engine. A later EnsureReady reloads from the slot.
func (m *Manager) Close() error {
	m.inUse.Lock()
	defer m.inUse.Unlock()

	m.mu.Lock()
	e := m.engine
	m.engine = nil
	m.mu.Unlock()
	return e.Close()
}
