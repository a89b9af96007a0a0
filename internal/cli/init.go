package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// InitResult is the data returned by the init command.
type InitResult struct {
	Backend     string `json:"backend"`
	SlotKey     string `json:"slot_key"`
	CatalogSize int    `json:"catalog_size"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Load or create the progress database",
		Long: `Load the progress database from its slot, creating and saving an empty
one when the slot is empty. Running init again is a no-op.

Fails when the slot holds an image that cannot be decoded or opened; use
"cptrack reset --yes" to discard it.

Examples:
  cptrack init
  cptrack init --backend file --data-dir ./data
  cptrack init --backend redis --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, rootOpts)
		},
	}
}

func runInit(cmd *cobra.Command, opts *RootOptions) error {
	f := newFormatter(cmd, opts)
	return withApp(cmd, opts, f, func(ctx context.Context, a *app) error {
		if err := a.tracker.Initialize(ctx); err != nil {
			return f.Fail("failed to initialize database", err)
		}
		res := InitResult{
			Backend:     a.cfg.SlotBackend,
			SlotKey:     a.cfg.SlotKey,
			CatalogSize: a.tracker.Catalog().Len(),
		}
		return f.Success(res, func(w io.Writer) {
			fmt.Fprintf(w, "Database ready (%s slot %q, %d problems in catalog)\n",
				res.Backend, res.SlotKey, res.CatalogSize)
		})
	})
}
