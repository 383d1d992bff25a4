package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sheetcal/internal/calendar"
)

type pageOptions struct {
	calendarFlags

	mode        string
	selected    []string
	selectStart string
	selectEnd   string
	jsonOutput  bool
}

func newPageCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "page [date]",
		Short: "Print the calendar page containing a date",
		Long: `Print the calendar page containing a date (default: the initial page for
the selection). Day markers: * selected, [ range start, ] range end,
- inside range, x disabled, . outside boundary, ! today.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd, rootFlags, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.mode, "mode", "single", "Selection mode: single, multiple or range")
	cmd.Flags().StringSliceVar(&opts.selected, "selected", nil, "Selected dates for single/multiple mode")
	cmd.Flags().StringVar(&opts.selectStart, "select-start", "", "Range selection start")
	cmd.Flags().StringVar(&opts.selectEnd, "select-end", "", "Range selection end")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runPage(cmd *cobra.Command, rootFlags *rootFlags, opts *pageOptions, args []string) error {
	conf, cfg, err := opts.build(cmd, rootFlags)
	if err != nil {
		return err
	}
	today, err := opts.resolveToday(conf)
	if err != nil {
		return err
	}
	sel, err := opts.selection()
	if err != nil {
		return err
	}

	camera := calendar.InitialCameraDate(sel, cfg.Boundary, today)
	if len(args) == 1 {
		camera, err = calendar.ParseDate(args[0])
		if err != nil {
			return err
		}
	}

	page := calendar.BuildPage(cfg, camera)
	states := calendar.ResolvePage(page, sel, cfg, today)

	if opts.jsonOutput {
		return renderPageJSON(cmd.OutOrStdout(), page, states)
	}
	return renderPageText(cmd.OutOrStdout(), page, states, cfg.DisplayWeekNumbers)
}

func (o *pageOptions) selection() (calendar.Selection, error) {
	dates, err := parseDates("--selected", o.selected)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(o.mode) {
	case "", "single":
		switch len(dates) {
		case 0:
			return calendar.SingleDate{}, nil
		case 1:
			return calendar.SingleDate{Selected: dates[0]}, nil
		}
		return nil, errors.New("single mode accepts one --selected date; use --mode multiple")
	case "multiple":
		return calendar.NewMultipleDates(dates...), nil
	case "range":
		var rg calendar.Range
		if o.selectStart != "" {
			if rg.Start, err = calendar.ParseDate(o.selectStart); err != nil {
				return nil, fmt.Errorf("--select-start: %w", err)
			}
		}
		if o.selectEnd != "" {
			if rg.Start.IsZero() {
				return nil, errors.New("--select-end requires --select-start")
			}
			if rg.End, err = calendar.ParseDate(o.selectEnd); err != nil {
				return nil, fmt.Errorf("--select-end: %w", err)
			}
		}
		return rg, nil
	default:
		return nil, fmt.Errorf("unknown --mode %q", o.mode)
	}
}

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func renderPageText(w io.Writer, page calendar.Page, states [][]*calendar.CellState, weekNumbers bool) error {
	var b strings.Builder
	if page.Style == calendar.StyleWeek {
		fmt.Fprintf(&b, "Week of %s\n", page.WeekCameraDate)
	} else {
		fmt.Fprintf(&b, "%s %d\n", page.CameraDate.Month, page.CameraDate.Year)
	}

	var header strings.Builder
	if weekNumbers {
		fmt.Fprintf(&header, "%3s ", "Wk")
	}
	for _, name := range weekdayHeader {
		fmt.Fprintf(&header, "%3s ", name)
	}
	b.WriteString(strings.TrimRight(header.String(), " "))
	b.WriteByte('\n')

	for i, row := range page.Weeks {
		var line strings.Builder
		for j, cell := range row {
			switch cell.Kind {
			case calendar.CellOffset:
				line.WriteString("    ")
			case calendar.CellWeekNumber:
				fmt.Fprintf(&line, "%3d ", cell.ISOWeek)
			case calendar.CellDay:
				fmt.Fprintf(&line, "%3d%c", cell.Date.Day, marker(states[i][j]))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func marker(st *calendar.CellState) byte {
	switch {
	case st == nil:
		return ' '
	case st.Disabled:
		return 'x'
	case st.DisabledPassively:
		return '.'
	case st.SelectedRangeStart:
		return '['
	case st.SelectedRangeEnd:
		return ']'
	case st.SelectedBetween:
		return '-'
	case st.Selected:
		return '*'
	case st.Today:
		return '!'
	default:
		return ' '
	}
}

type pageJSON struct {
	CameraDate     calendar.Date  `json:"camera_date"`
	WeekCameraDate calendar.Date  `json:"week_camera_date"`
	Style          calendar.Style `json:"style"`
	OffsetStart    int            `json:"offset_start"`
	Weeks          [][]cellJSON   `json:"weeks"`
}

type cellJSON struct {
	Kind    string              `json:"kind"`
	Date    *calendar.Date      `json:"date,omitempty"`
	ISOWeek int                 `json:"iso_week,omitempty"`
	State   *calendar.CellState `json:"state,omitempty"`
}

func renderPageJSON(w io.Writer, page calendar.Page, states [][]*calendar.CellState) error {
	out := pageJSON{
		CameraDate:     page.CameraDate,
		WeekCameraDate: page.WeekCameraDate,
		Style:          page.Style,
		OffsetStart:    page.OffsetStart,
		Weeks:          make([][]cellJSON, len(page.Weeks)),
	}
	for i, row := range page.Weeks {
		out.Weeks[i] = make([]cellJSON, len(row))
		for j, cell := range row {
			c := cellJSON{Kind: cell.Kind.String(), State: states[i][j]}
			switch cell.Kind {
			case calendar.CellDay:
				d := cell.Date
				c.Date = &d
			case calendar.CellWeekNumber:
				c.ISOWeek = cell.ISOWeek
			}
			out.Weeks[i][j] = c
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
