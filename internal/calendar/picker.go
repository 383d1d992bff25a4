package calendar

import "time"

// MonthPicker is the data behind a month selection view.
type MonthPicker struct {
	Selected  time.Month
	ThisMonth time.Month
	// Disabled lists the months of the camera year that share no day with
	// the boundary.
	Disabled []time.Month
}

// MonthData computes the month picker for the year of cameraDate.
func MonthData(cfg Config, cameraDate, today Date) MonthPicker {
	mp := MonthPicker{
		Selected:  cameraDate.Month,
		ThisMonth: today.Month,
		Disabled:  []time.Month{},
	}
	for m := time.January; m <= time.December; m++ {
		first := Date{Year: cameraDate.Year, Month: m, Day: 1}
		last := EndOfMonth(first)
		if last.Before(cfg.Boundary.Start) || first.After(cfg.Boundary.End) {
			mp.Disabled = append(mp.Disabled, m)
		}
	}
	return mp
}

// Years returns every year the boundary touches, ascending. A reversed
// boundary touches no year.
func Years(cfg Config) []int {
	if cfg.Boundary.End.Before(cfg.Boundary.Start) {
		return []int{}
	}
	years := make([]int, 0, cfg.Boundary.End.Year-cfg.Boundary.Start.Year+1)
	for y := cfg.Boundary.Start.Year; y <= cfg.Boundary.End.Year; y++ {
		years = append(years, y)
	}
	return years
}

// InitialCameraDate picks the page to open with: the first selected date if
// any, otherwise today when inside the boundary, otherwise the boundary start.
func InitialCameraDate(sel Selection, boundary Boundary, today Date) Date {
	d, ok := firstSelectedDate(sel)
	if !ok {
		d = today
		if !boundary.Contains(today) {
			d = boundary.Start
		}
	}
	return StartOfWeekOrMonth(d)
}

// InitialCustomCameraDate normalizes a caller-provided camera date. It
// reports false when d lies outside the boundary.
func InitialCustomCameraDate(d Date, boundary Boundary) (Date, bool) {
	if d.IsZero() || !boundary.Contains(d) {
		return Date{}, false
	}
	return StartOfWeekOrMonth(d), true
}
