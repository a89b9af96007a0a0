package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/roach88/cptrack/internal/catalog"
	"github.com/roach88/cptrack/internal/config"
	"github.com/roach88/cptrack/internal/logger"
	"github.com/roach88/cptrack/internal/slot"
	"github.com/roach88/cptrack/internal/store"
	"github.com/roach88/cptrack/internal/tracker"
)

// app is the composition root shared by every command.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	tracker *tracker.Tracker
	closers []io.Closer
}

// resolveConfig reads CPTRACK_* variables and applies non-empty flags on top.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if opts.Backend != "" {
		cfg.SlotBackend = opts.Backend
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.SlotKey != "" {
		cfg.SlotKey = opts.SlotKey
	}
	if opts.Catalog != "" {
		cfg.CatalogPath = opts.Catalog
	}
	if opts.Verbose {
		cfg.LogMode = "development"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openSlot(ctx context.Context, cfg config.Config) (slot.Slot, io.Closer, error) {
	switch cfg.SlotBackend {
	case config.BackendMemory:
		return slot.NewMemory(), nil, nil
	case config.BackendRedis:
		r, err := slot.NewRedis(ctx, slot.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		f, err := slot.NewFile(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// openApp wires configuration, slot, catalog, logger and tracker. Errors are
// returned as ExitErrors with ExitCommandError.
func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create logger", err)
	}

	s, closer, err := openSlot(ctx, cfg)
	if err != nil {
		log.Sync()
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open %s slot", cfg.SlotBackend), err)
	}

	manager := store.NewManager(slot.NewAdapter(s, cfg.SlotKey), store.WithLogger(log))
	repo := store.NewRepository(manager)

	a := &app{
		cfg:     cfg,
		log:     log,
		tracker: tracker.New(manager, repo, cat),
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a, nil
}

// Close releases the engine and any backend connections.
func (a *app) Close() error {
	err := a.tracker.Close()
	for _, c := range a.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	a.log.Sync()
	return err
}
