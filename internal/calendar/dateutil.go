package calendar

import "time"

const (
	daysInWeek      = 7
	firstDayInMonth = 1
)

// StartOfWeek returns the Monday of d's ISO week.
func StartOfWeek(d Date) Date {
	return d.AddDays(-(d.ISODay() - 1))
}

// EndOfWeek returns the Sunday of d's ISO week.
func EndOfWeek(d Date) Date {
	return d.AddDays(daysInWeek - d.ISODay())
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: firstDayInMonth}
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: LengthOfMonth(d)}
}

// StartOfWeekOrMonth walks backwards from d until it reaches a Monday or the
// first day of the month, whichever comes first.
func StartOfWeekOrMonth(d Date) Date {
	for d.Day > firstDayInMonth && d.Weekday() != time.Monday {
		d = d.AddDays(-1)
	}
	return d
}

// IsLeapYear reports whether y is a Gregorian leap year.
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// MonthLength returns the number of days of month m.
func MonthLength(m time.Month, leapYear bool) int {
	switch m {
	case time.February:
		if leapYear {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// LengthOfMonth returns the number of days in d's month.
func LengthOfMonth(d Date) int {
	return MonthLength(d.Month, IsLeapYear(d.Year))
}

// firstWeekStart returns the Monday that starts ISO week 1 of year: the Monday
// on/before Jan 1 when Jan 1 is Monday..Thursday, otherwise the following one.
func firstWeekStart(year int) Date {
	jan1 := Date{Year: year, Month: time.January, Day: 1}
	monday := StartOfWeek(jan1)
	if jan1.ISODay() <= 4 {
		return monday
	}
	return monday.AddWeeks(1)
}

// ISOWeekNumber returns the ISO-8601 week number of d. Late December dates
// may belong to week 1 of the next year and early January dates to the last
// week of the previous year.
func ISOWeekNumber(d Date) int {
	if !d.Before(firstWeekStart(d.Year + 1)) {
		return 1
	}
	start := firstWeekStart(d.Year)
	if d.Before(start) {
		start = firstWeekStart(d.Year - 1)
	}
	return start.DaysUntil(d)/daysInWeek + 1
}

// PreviousWeekAnchor returns the anchor of the displayable week before the
// one containing d. Week pages never cross a month boundary, so the anchor is
// either a Monday or the first day of a month.
func PreviousWeekAnchor(d Date) Date {
	a := StartOfWeekOrMonth(d)
	switch {
	case a.Day > daysInWeek:
		return a.AddWeeks(-1)
	case a.Day > firstDayInMonth:
		// a is a Monday in the first week; the 1st is the partial week before it.
		return StartOfMonth(a)
	default:
		return StartOfWeekOrMonth(a.AddDays(-1))
	}
}

// NextWeekAnchor returns the anchor of the displayable week after the one
// containing d. When fewer than 7 days remain in the month it jumps to the
// 1st of the next month instead of overshooting.
func NextWeekAnchor(d Date) Date {
	a := StartOfWeekOrMonth(d)
	switch {
	case a.Day == firstDayInMonth:
		return a.AddDays(daysInWeek - a.ISODay() + 1)
	case LengthOfMonth(a)-a.Day >= daysInWeek:
		return a.AddWeeks(1)
	default:
		return StartOfMonth(a.AddMonths(1))
	}
}

// JumpPrev returns the camera date of the page before d.
func JumpPrev(d Date, cfg Config) Date {
	switch cfg.Style {
	case StyleWeek:
		return PreviousWeekAnchor(d)
	default:
		return StartOfMonth(d.AddMonths(-1))
	}
}

// JumpNext returns the camera date of the page after d.
func JumpNext(d Date, cfg Config) Date {
	switch cfg.Style {
	case StyleWeek:
		return NextWeekAnchor(d)
	default:
		return StartOfMonth(d.AddMonths(1))
	}
}
