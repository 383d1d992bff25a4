package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sheetcal/internal/calendar"
	"sheetcal/internal/config"
)

// calendarFlags override the calendar section of the config for the
// offline commands. Without --config the built-in defaults are the base.
type calendarFlags struct {
	style         string
	weekNumbers   bool
	boundaryStart string
	boundaryEnd   string
	disabled      []string
	today         string
}

func (f *calendarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "style", "", "Calendar style: month or week")
	cmd.Flags().BoolVar(&f.weekNumbers, "week-numbers", false, "Prefix every row with its ISO week number")
	cmd.Flags().StringVar(&f.boundaryStart, "boundary-start", "", "First selectable date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.boundaryEnd, "boundary-end", "", "Last selectable date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&f.disabled, "disabled", nil, "Disabled dates (YYYY-MM-DD, repeatable or comma separated)")
	cmd.Flags().StringVar(&f.today, "today", "", "Override today's date (YYYY-MM-DD)")
}

func (f *calendarFlags) build(cmd *cobra.Command, rootFlags *rootFlags) (*config.Config, calendar.Config, error) {
	conf := config.DefaultConfig()
	if fl := cmd.Flag("config"); fl != nil && fl.Changed {
		loaded, err := config.Load(rootFlags.configPath)
		if err != nil {
			return nil, calendar.Config{}, fmt.Errorf("load config %s: %w", rootFlags.configPath, err)
		}
		conf = loaded
	}

	if f.style != "" {
		conf.Calendar.Style = f.style
	}
	if fl := cmd.Flag("week-numbers"); fl != nil && fl.Changed {
		conf.Calendar.DisplayWeekNumbers = f.weekNumbers
	}
	if f.boundaryStart != "" {
		d, err := calendar.ParseDate(f.boundaryStart)
		if err != nil {
			return nil, calendar.Config{}, fmt.Errorf("--boundary-start: %w", err)
		}
		conf.Calendar.Boundary.Start = d
	}
	if f.boundaryEnd != "" {
		d, err := calendar.ParseDate(f.boundaryEnd)
		if err != nil {
			return nil, calendar.Config{}, fmt.Errorf("--boundary-end: %w", err)
		}
		conf.Calendar.Boundary.End = d
	}
	extra, err := parseDates("--disabled", f.disabled)
	if err != nil {
		return nil, calendar.Config{}, err
	}

	cfg, err := conf.BuildCalendar(extra...)
	if err != nil {
		return nil, calendar.Config{}, err
	}
	return conf, cfg, nil
}

func (f *calendarFlags) resolveToday(conf *config.Config) (calendar.Date, error) {
	if f.today == "" {
		return calendar.FromTime(time.Now().In(conf.Location())), nil
	}
	d, err := calendar.ParseDate(f.today)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("--today: %w", err)
	}
	return d, nil
}

func parseDates(flag string, values []string) ([]calendar.Date, error) {
	out := make([]calendar.Date, 0, len(values))
	for _, v := range values {
		d, err := calendar.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flag, err)
		}
		out = append(out, d)
	}
	return out, nil
}
