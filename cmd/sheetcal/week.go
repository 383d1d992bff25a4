package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetcal/internal/calendar"
)

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week <date>...",
		Short: "Print the ISO-8601 week number of dates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDates("week", args)
			if err != nil {
				return err
			}
			for _, d := range dates {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tW%02d\n", d, calendar.ISOWeekNumber(d))
			}
			return nil
		},
	}
}
