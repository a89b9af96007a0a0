package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard all stored progress",
		Long: `Replace the stored database with an empty one. This also recovers a
slot holding an image that can no longer be loaded.

All progress for all users is lost. Requires --yes.

Examples:
  cptrack reset --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm that all progress should be discarded")

	return cmd
}

func runReset(cmd *cobra.Command, opts *ResetOptions) error {
	f := newFormatter(cmd, opts.RootOptions)
	if !opts.Yes {
		msg := "refusing to reset without --yes"
		_ = f.Error(ErrCodeInvalidInput, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	return withApp(cmd, opts.RootOptions, f, func(ctx context.Context, a *app) error {
		if err := a.tracker.Reset(ctx); err != nil {
			return f.Fail("failed to reset database", err)
		}
		return f.Success(map[string]string{"slot_key": a.cfg.SlotKey}, func(w io.Writer) {
			fmt.Fprintf(w, "All progress in slot %q discarded\n", a.cfg.SlotKey)
		})
	})
}
