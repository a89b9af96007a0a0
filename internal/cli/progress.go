package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	User string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's completed problems",
		Long: `List the progress records stored for a user, oldest first.

Examples:
  cptrack list --user alice
  cptrack list --user alice --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	f := newFormatter(cmd, opts.RootOptions)
	return withApp(cmd, opts.RootOptions, f, func(ctx context.Context, a *app) error {
		records, err := a.tracker.ListProgress(ctx, opts.User)
		if err != nil {
			return f.Fail("failed to list progress", err)
		}
		return f.Success(records, func(w io.Writer) {
			if len(records) == 0 {
				fmt.Fprintf(w, "No problems completed by %s\n", opts.User)
				return
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROBLEM\tCOMPLETED\tXP")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", r.ProblemID, humanize.Time(r.CompletedDate), r.XPAwarded)
			}
			tw.Flush()
		})
	})
}

// CompleteOptions holds flags for the complete command.
type CompleteOptions struct {
	*RootOptions
	User string
	XP   int
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "complete <problem-id>",
		Short: "Mark a problem as completed",
		Long: `Record that a user completed a problem. Completing the same problem
twice keeps the first record.

Without --xp the problem must be in the catalog and XP is awarded by the
reward rule (1 XP on every third completion). With --xp the given amount is
stored as is.

Examples:
  cptrack complete two-sum --user alice
  cptrack complete knapsack --user alice --xp 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComplete(cmd, opts, args[0], cmd.Flags().Changed("xp"))
		},
	}

	cmd.Flags().StringVarP(&opts.User, "user", "u", "", "user id (required)")
	cmd.Flags().IntVar(&opts.XP, "xp", 0, "explicit XP to award")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// CompleteResult is the data returned by the complete command.
type CompleteResult struct {
	UserID    string `json:"user_id"`
	ProblemID string `json:"problem_id"`
	Inserted  bool   `json:"inserted"`
	XPAwarded int    `json:"xp_awarded"`
}

func runComplete(cmd *cobra.Command, opts *CompleteOptions, problemID string, explicitXP bool) error {
	f := newFormatter(cmd, opts.RootOptions)
	return withApp(cmd, opts.RootOptions, f, func(ctx context.Context, a *app) error {
		res := CompleteResult{UserID: opts.User, ProblemID: problemID}

		if explicitXP {
			inserted, err := a.tracker.CompleteProblem(ctx, opts.User, problemID, opts.XP)
			if err != nil {
				return f.Fail("failed to record completion", err)
			}
			res.Inserted = inserted
			if inserted {
				res.XPAwarded = opts.XP
			}
		} else {
			c, err := a.tracker.Solve(ctx, opts.User, problemID)
			if err != nil {
				return f.Fail("failed to record completion", err)
			}
			res.Inserted = c.Inserted
			res.XPAwarded = c.XPAwarded
		}

		return f.Success(res, func(w io.Writer) {
			if !res.Inserted {
				fmt.Fprintf(w, "%s already completed %s\n", res.UserID, res.ProblemID)
				return
			}
			fmt.Fprintf(w, "%s completed %s (+%s XP)\n", res.UserID, res.ProblemID, humanize.Comma(int64(res.XPAwarded)))
		})
	})
}
