package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withApp opens the app, runs fn and closes the app. Setup failures are
// reported through f with ErrCodeConfig.
func withApp(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter, fn func(ctx context.Context, a *app) error) error {
	ctx := commandContext(cmd)
	a, err := openApp(ctx, opts)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	defer a.Close()

	f.VerboseLog("Using %s slot %q", a.cfg.SlotBackend, a.cfg.SlotKey)
	return fn(ctx, a)
}
