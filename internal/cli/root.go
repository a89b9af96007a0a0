// Package cli implements the cptrack command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
// Storage flags left unset fall back to CPTRACK_* environment variables.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Backend string
	DataDir string
	SlotKey string
	Catalog string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the cptrack CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cptrack",
		Short: "cptrack - competitive programming progress tracker",
		Long: `Track solved competitive programming problems in a local embedded database.

Progress lives in an in-memory SQLite database whose image is saved to a
single key-value slot (a file, Redis key, or process memory) after every change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", ErrCodeConfig, msg)
				return NewExitError(ExitCommandError, msg)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "slot backend (file|memory|redis)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory for the file backend")
	cmd.PersistentFlags().StringVar(&opts.SlotKey, "slot-key", "", "name of the slot holding the database image")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "problem catalog (YAML or JSON); defaults to the built-in catalog")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCompleteCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
