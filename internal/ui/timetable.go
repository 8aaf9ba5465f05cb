package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/export"
	"github.com/javiermolinar/indico/internal/overlap"
)

func (a *App) timetableCmd() *cobra.Command {
	var days dateFlags
	var format string

	cmd := &cobra.Command{
		Use:   "timetable CONFERENCE",
		Short: "Print a conference timetable",
		Long: `Fetch and print a conference timetable.

Formats:
  text  entries grouped by day, conflicts marked with "!" (default)
  json  one object per entry
  ics   iCalendar, one event per contribution, break and empty block

Example:
  indico timetable 42 --format ics > conference.ics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := days.rangeOf()
			if err != nil {
				return err
			}

			eng, err := a.engine(false)
			if err != nil {
				return err
			}

			conf := args[0]
			tree, err := eng.Timetable(context.Background(), conf, r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "", "text":
				PrintTree(out, tree, overlap.Find(tree), termWidth()-40)
			case "json":
				doc, err := export.JSON(conf, tree.Entries(), colorEnabled())
				if err != nil {
					return err
				}
				_, err = out.Write(doc)
				return err
			case "ics":
				endpoint := a.config.Endpoint()
				opts := export.ICSOptions{
					ConferenceID: conf,
					EventURL:     strings.TrimSuffix(endpoint, "/") + "/event/" + url.PathEscape(conf) + "/timetable/",
					Now:          time.Now(),
				}
				if u, err := url.Parse(endpoint); err == nil {
					opts.Host = u.Hostname()
				}
				_, err = fmt.Fprint(out, export.ICS(tree, opts))
				return err
			default:
				return fmt.Errorf("format must be 'text', 'json' or 'ics', got %q", format)
			}
			return nil
		},
	}

	days.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or ics")
	return cmd
}
