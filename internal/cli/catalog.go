package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the problems in the catalog",
		Long: `List the problems known to the tracker. The built-in catalog is used
unless --catalog or CPTRACK_CATALOG names a YAML or JSON file.

Examples:
  cptrack catalog
  cptrack catalog --catalog ./problems.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, rootOpts)
		},
	}
}

func runCatalog(cmd *cobra.Command, opts *RootOptions) error {
	f := newFormatter(cmd, opts)

	cfg, err := resolveConfig(opts)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	problems := cat.Problems()
	return f.Success(problems, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, p := range problems {
			fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
		}
		tw.Flush()
	})
}
