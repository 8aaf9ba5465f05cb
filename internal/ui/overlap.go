package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/dateutil"
	"github.com/javiermolinar/indico/internal/overlap"
)

// dateFlags holds the --from/--to pair shared by read commands.
type dateFlags struct {
	from string
	to   string
}

func (d *dateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&d.to, "to", "", "Last day to include (YYYY-MM-DD)")
}

func (d *dateFlags) rangeOf() (dateutil.DateRange, error) {
	r, err := dateutil.NewDateRange(d.from, d.to)
	if err != nil {
		return dateutil.DateRange{}, fmt.Errorf("invalid date range: %w", err)
	}
	return r, nil
}

func (a *App) overlapCmd() *cobra.Command {
	var days dateFlags
	var by string
	var fail bool

	cmd := &cobra.Command{
		Use:   "overlap CONFERENCE",
		Short: "Report overlapping timetable entries",
		Long: `Fetch a conference timetable and report every pair of entries that
overlap inside the same session block (or at top level), and every
contribution scheduled outside its session block.

With --by speaker or --by room, report contributions that share a speaker
or a room at the same time, across sessions. Speakers are the presenters,
primary authors and co-authors of a contribution, matched by e-mail.

Example:
  indico overlap 42 --from 2025-06-02 --to 2025-06-04`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, err := overlap.ParseResource(by)
			if err != nil {
				return fmt.Errorf("invalid --by: %w", err)
			}
			r, err := days.rangeOf()
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			findings, err := eng.Clashes(context.Background(), args[0], r, resource)
			if err != nil {
				return err
			}

			PrintFindings(cmd.OutOrStdout(), findings)
			if fail && len(findings) > 0 {
				return fmt.Errorf("%s found", pluralize(len(findings), "conflict", "conflicts"))
			}
			return nil
		},
	}

	days.register(cmd)
	cmd.Flags().StringVar(&by, "by", string(overlap.BySibling), "What to check: sibling, speaker or room")
	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with an error when conflicts are found")
	return cmd
}
