package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/swap"
	"github.com/javiermolinar/indico/internal/timetable"
)

func (a *App) swapCmd() *cobra.Command {
	var idType string
	var dryRun bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "swap CONFERENCE A B",
		Short: "Swap the time slots of two timetable entries",
		Long: `Swap two entries of a conference timetable. Each entry moves to the
other's start time and keeps its own duration.

The swap is checked against the whole timetable first: it is refused if
either entry would overlap a sibling or leave its session block. Only
then are the two entries updated in Indico, one after the other. If the
second update fails the first one is reverted.

Entries are named by contribution id (cid, default), timetable entry id
(tid, e.g. c4051 or s12) or friendly id (aid).

Example:
  indico swap 42 4051 4060
  indico swap 42 c4051 b3 --type tid --dry-run`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := timetable.ParseIDKind(idType)
			if err != nil {
				return err
			}

			eng, err := a.engine(!dryRun)
			if err != nil {
				return err
			}

			conf := args[0]
			plan, err := eng.Plan(context.Background(), conf, args[1], args[2], kind)
			if err != nil {
				return fmt.Errorf("cannot swap %s %s and %s: %w", kind.Label(), args[1], args[2], err)
			}

			out := cmd.OutOrStdout()
			PrintPlan(out, plan)
			if dryRun {
				fmt.Fprintln(out, formatMuted("Dry run, nothing changed."))
				return nil
			}

			if timeout <= 0 {
				timeout = a.config.SwapDeadline()
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			result, err := eng.Execute(ctx, conf, plan)
			if err != nil {
				return explainSwapError(err)
			}
			PrintResult(out, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&idType, "type", "t", string(timetable.IDContribution), "Id type of A and B: cid, tid or aid")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print the swap without changing anything")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Deadline for applying the swap (default from config swap.deadline)")
	return cmd
}

// explainSwapError adds what the operator has to do to an execution error.
func explainSwapError(err error) error {
	switch {
	case errors.Is(err, swap.ErrRollbackFailed):
		return fmt.Errorf("%w\nthe timetable is inconsistent and must be repaired by hand, see 'indico history'", err)
	case errors.Is(err, swap.ErrPartialSwap):
		var partial *swap.PartialSwapError
		if errors.As(err, &partial) && partial.RolledBack {
			return fmt.Errorf("swap not applied: %w", err)
		}
		return fmt.Errorf("%w\nsee 'indico history'", err)
	default:
		return err
	}
}
