package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/cptrack/internal/domain"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	User string
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the catalog merged with a user's progress",
		Long: `Show every catalog problem with the user's completion state, followed
by totals and the number solved in the last seven days.

Examples:
  cptrack view --user alice
  cptrack view --user alice --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runView(cmd *cobra.Command, opts *ViewOptions) error {
	f := newFormatter(cmd, opts.RootOptions)
	return withApp(cmd, opts.RootOptions, f, func(ctx context.Context, a *app) error {
		view, err := a.tracker.GetDomainView(ctx, opts.User)
		if err != nil {
			return f.Fail("failed to build view", err)
		}
		return f.Success(view, func(w io.Writer) {
			writeView(w, view)
		})
	})
}

func writeView(w io.Writer, view domain.View) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCOMPLETED\tXP")
	for _, p := range view.Problems {
		mark, when := "[ ]", "-"
		if p.Completed {
			mark = "[x]"
			if p.CompletedDate != nil {
				when = humanize.Time(*p.CompletedDate)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", mark, p.ID, p.Name, when, p.XPAwarded)
	}
	tw.Flush()

	s := view.Stats
	fmt.Fprintf(w, "\nSolved: %s/%s  XP: %s  This week: %s  Streak: %d\n",
		humanize.Comma(int64(s.TotalSolved)), humanize.Comma(int64(len(view.Problems))),
		humanize.Comma(int64(s.TotalXP)), humanize.Comma(int64(s.SolvedThisWeek)), s.Streak)
}
