package ui

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/history"
)

func (a *App) historyCmd() *cobra.Command {
	var filter history.Filter

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List executed swaps",
		Long: `List swaps recorded in the local journal, newest first.

Swaps marked partial or rollback_failed left the timetable inconsistent
and need manual repair.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}

			records, err := repo.List(context.Background(), filter)
			if err != nil {
				return err
			}
			PrintRecords(cmd.OutOrStdout(), records, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.ConferenceID, "conference", "c", "", "Only swaps of this conference")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "Maximum number of swaps (0 for all)")
	return cmd
}
