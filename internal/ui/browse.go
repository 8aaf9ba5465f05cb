package ui

import (
	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/tui"
)

func (a *App) browseCmd() *cobra.Command {
	var days dateFlags

	cmd := &cobra.Command{
		Use:   "browse CONFERENCE",
		Short: "Browse a timetable and swap entries interactively",
		Long: `Open an interactive timetable browser.

Conflicting entries are marked with "!". Mark two entries with space,
press s to see the swap and y to apply it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := days.rangeOf()
			if err != nil {
				return err
			}

			eng, err := a.engine(true)
			if err != nil {
				return err
			}

			return tui.Run(eng, a.config, tui.Options{
				ConferenceID: args[0],
				Days:         r,
				Logger:       a.logger.Logger,
			})
		},
	}

	days.register(cmd)
	return cmd
}
