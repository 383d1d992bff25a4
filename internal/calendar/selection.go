package calendar

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDateNotSelectable is returned by Select for dates outside the boundary
// or explicitly disabled.
var ErrDateNotSelectable = errors.New("date is not selectable")

// Selection is the user's current choice. It is one of SingleDate,
// MultipleDates or Range; no other implementations exist.
type Selection interface {
	isSelection()
}

// SingleDate holds at most one selected date. The zero Date means nothing is
// selected.
type SingleDate struct {
	Selected Date
}

// MultipleDates holds an unordered set of selected dates.
type MultipleDates struct {
	dates map[Date]struct{}
}

// Range holds a period. Start set with End zero is a range in progress.
type Range struct {
	Start Date
	End   Date
}

func (SingleDate) isSelection()    {}
func (MultipleDates) isSelection() {}
func (Range) isSelection()         {}

// NewMultipleDates builds a set selection from dates. Duplicates collapse.
func NewMultipleDates(dates ...Date) MultipleDates {
	set := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		if !d.IsZero() {
			set[d] = struct{}{}
		}
	}
	return MultipleDates{dates: set}
}

// Contains reports whether d is selected.
func (m MultipleDates) Contains(d Date) bool {
	_, ok := m.dates[d]
	return ok
}

// Len returns the number of selected dates.
func (m MultipleDates) Len() int { return len(m.dates) }

// Dates returns the selected dates in ascending order.
func (m MultipleDates) Dates() []Date {
	out := make([]Date, 0, len(m.dates))
	for d := range m.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// toggle returns a copy of m with d added or removed.
func (m MultipleDates) toggle(d Date) MultipleDates {
	set := make(map[Date]struct{}, len(m.dates)+1)
	for k := range m.dates {
		set[k] = struct{}{}
	}
	if _, ok := set[d]; ok {
		delete(set, d)
	} else {
		set[d] = struct{}{}
	}
	return MultipleDates{dates: set}
}

// InProgress reports whether only the start of the range is chosen.
func (r Range) InProgress() bool {
	return !r.Start.IsZero() && r.End.IsZero()
}

// Complete reports whether both ends are chosen.
func (r Range) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Normalize swaps a reversed range so that Start <= End.
func (r Range) Normalize() Range {
	if r.Complete() && r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Select applies a tap on d to sel and returns the new selection. sel itself
// is left untouched. Dates outside the boundary or disabled are rejected and
// the caller keeps its previous selection.
func Select(sel Selection, d Date, cfg Config) (Selection, error) {
	if !cfg.Selectable(d) {
		return sel, fmt.Errorf("%w: %s", ErrDateNotSelectable, d)
	}

	switch s := sel.(type) {
	case SingleDate:
		return SingleDate{Selected: d}, nil
	case MultipleDates:
		return s.toggle(d), nil
	case Range:
		s = s.Normalize()
		switch {
		case s.Start.IsZero() || s.Complete():
			return Range{Start: d}, nil
		case d.Before(s.Start):
			return Range{Start: d}, nil
		default:
			return Range{Start: s.Start, End: d}, nil
		}
	case nil:
		return SingleDate{Selected: d}, nil
	}
	panic(fmt.Sprintf("calendar: unknown selection type %T", sel))
}

// firstSelectedDate returns the earliest date a selection refers to.
func firstSelectedDate(sel Selection) (Date, bool) {
	switch s := sel.(type) {
	case SingleDate:
		return s.Selected, !s.Selected.IsZero()
	case MultipleDates:
		dates := s.Dates()
		if len(dates) == 0 {
			return Date{}, false
		}
		return dates[0], true
	case Range:
		s = s.Normalize()
		return s.Start, !s.Start.IsZero()
	}
	return Date{}, false
}
