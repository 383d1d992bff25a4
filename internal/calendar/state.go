package calendar

// CellState is the resolved appearance of a single day cell.
type CellState struct {
	Date Date
	// Disabled marks a date listed in the config's disabled dates.
	Disabled bool
	// DisabledPassively marks a date outside the boundary.
	DisabledPassively  bool
	Selected           bool
	SelectedRangeStart bool
	SelectedRangeEnd   bool
	// SelectedBetween marks dates strictly inside a complete range.
	SelectedBetween bool
	Today           bool
}

// ResolveCellState annotates a day cell of page. It reports false for
// non-day cells and for day cells of another month than the page's camera
// date, which are shown but carry no state.
//
// Boundary and disabled checks are recomputed on every call; a date that is
// not selectable never reports any selected flag, whatever sel contains.
func ResolveCellState(cell Cell, page Page, sel Selection, cfg Config, today Date) (CellState, bool) {
	if cell.Kind != CellDay {
		return CellState{}, false
	}
	d := cell.Date
	if d.Month != page.CameraDate.Month || d.Year != page.CameraDate.Year {
		return CellState{}, false
	}

	st := CellState{
		Date:              d,
		Disabled:          cfg.IsDisabled(d),
		DisabledPassively: !cfg.Boundary.Contains(d),
		Today:             d == today,
	}
	if st.Disabled || st.DisabledPassively {
		return st, true
	}

	switch s := sel.(type) {
	case SingleDate:
		st.Selected = !s.Selected.IsZero() && s.Selected == d
	case MultipleDates:
		st.Selected = s.Contains(d)
	case Range:
		s = s.Normalize()
		// The start of a range in progress is not reported as selected.
		st.SelectedRangeStart = s.Complete() && s.Start == d
		st.SelectedRangeEnd = !s.End.IsZero() && s.End == d
		st.SelectedBetween = s.Complete() && d.After(s.Start) && d.Before(s.End)
		st.Selected = st.SelectedBetween || st.SelectedRangeStart || st.SelectedRangeEnd
	}
	return st, true
}

// ResolvePage resolves every cell of page. The result has the same shape as
// page.Weeks; entries for cells without state are nil.
func ResolvePage(page Page, sel Selection, cfg Config, today Date) [][]*CellState {
	out := make([][]*CellState, len(page.Weeks))
	for i, row := range page.Weeks {
		out[i] = make([]*CellState, len(row))
		for j, cell := range row {
			if st, ok := ResolveCellState(cell, page, sel, cfg, today); ok {
				st := st
				out[i][j] = &st
			}
		}
	}
	return out
}
