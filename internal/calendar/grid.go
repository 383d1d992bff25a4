package calendar

import "time"

// CellKind tells the renderer what a grid cell holds.
type CellKind int

const (
	// CellDay carries a real date.
	CellDay CellKind = iota
	// CellOffset is a non-interactive placeholder aligning the first day
	// under its weekday column.
	CellOffset
	// CellWeekNumber carries the ISO week number of its row.
	CellWeekNumber
)

func (k CellKind) String() string {
	switch k {
	case CellDay:
		return "day"
	case CellOffset:
		return "offset"
	case CellWeekNumber:
		return "week_number"
	default:
		return "unknown"
	}
}

// Cell is one slot of a calendar page. Date is set only for CellDay and
// ISOWeek only for CellWeekNumber.
type Cell struct {
	Kind    CellKind
	Date    Date
	ISOWeek int
}

// DayCell returns a cell for d.
func DayCell(d Date) Cell { return Cell{Kind: CellDay, Date: d} }

// OffsetCell returns a padding cell.
func OffsetCell() Cell { return Cell{Kind: CellOffset} }

// WeekNumberCell returns a week-number cell.
func WeekNumberCell(week int) Cell { return Cell{Kind: CellWeekNumber, ISOWeek: week} }

// Page is one screen of the calendar.
type Page struct {
	// CameraDate is the normalized anchor: the 1st of the month for month
	// pages, a Monday or the 1st of the month for week pages.
	CameraDate Date
	// WeekCameraDate is the first date shown on a week page. It differs from
	// CameraDate only when the week starts in the previous month.
	WeekCameraDate Date
	Style          Style
	// OffsetStart is the number of leading padding cells.
	OffsetStart int
	// Weeks holds the rows. Every row but the last has seven day columns;
	// month pages stop after the last day of the month without padding.
	Weeks [][]Cell
}

// DayCount returns the number of day-bearing cells of the page.
func (p Page) DayCount() int {
	n := 0
	for _, row := range p.Weeks {
		for _, c := range row {
			if c.Kind == CellDay {
				n++
			}
		}
	}
	return n
}

// weekdayOffset returns how many columns d's weekday is from Monday.
func weekdayOffset(d Date) int {
	return (d.ISODay() - int(time.Monday) + daysInWeek) % daysInWeek
}

// NormalizeCameraDate returns the anchor a page for d is built from.
func NormalizeCameraDate(d Date, style Style) Date {
	if style == StyleWeek {
		return StartOfWeekOrMonth(d)
	}
	return StartOfMonth(d)
}

// BuildPage computes the grid for the page containing cameraDate.
func BuildPage(cfg Config, cameraDate Date) Page {
	cameraDate = NormalizeCameraDate(cameraDate, cfg.Style)
	weekCameraDate := cameraDate

	var offsetStart, days int
	switch cfg.Style {
	case StyleWeek:
		// A week that starts in the first days of a month whose 1st is not a
		// Monday is shown from its Monday, reaching into the previous month.
		if cameraDate.Day <= daysInWeek && weekdayOffset(StartOfMonth(cameraDate)) > 0 {
			weekCameraDate = cameraDate.AddDays(-weekdayOffset(cameraDate))
		}
		offsetStart = weekdayOffset(weekCameraDate)
		days = daysInWeek
	default:
		offsetStart = weekdayOffset(cameraDate)
		days = LengthOfMonth(cameraDate)
	}

	cells := make([]Cell, 0, days+offsetStart)
	for i := 0; i < days+offsetStart; i++ {
		var d Date
		if cfg.Style == StyleWeek {
			d = weekCameraDate.AddDays(i - offsetStart)
		} else {
			d = cameraDate.AddDays(i - offsetStart)
		}
		cells = append(cells, DayCell(d))
	}
	if cfg.Style == StyleWeek {
		cells = cells[:len(cells)-offsetStart]
	} else {
		cells = cells[offsetStart:]
	}

	if weekCameraDate.Day <= daysInWeek && offsetStart > 0 {
		padded := make([]Cell, 0, len(cells)+offsetStart)
		for i := 0; i < offsetStart; i++ {
			padded = append(padded, OffsetCell())
		}
		cells = append(padded, cells...)
	}

	weeks := chunk(cells, daysInWeek)
	if cfg.DisplayWeekNumbers {
		for i, row := range weeks {
			weeks[i] = withWeekNumber(row)
		}
	}

	return Page{
		CameraDate:     cameraDate,
		WeekCameraDate: weekCameraDate,
		Style:          cfg.Style,
		OffsetStart:    offsetStart,
		Weeks:          weeks,
	}
}

func chunk(cells []Cell, size int) [][]Cell {
	rows := make([][]Cell, 0, (len(cells)+size-1)/size)
	for start := 0; start < len(cells); start += size {
		end := start + size
		if end > len(cells) {
			end = len(cells)
		}
		row := make([]Cell, end-start)
		copy(row, cells[start:end])
		rows = append(rows, row)
	}
	return rows
}

func withWeekNumber(row []Cell) []Cell {
	for _, c := range row {
		if c.Kind == CellDay {
			out := make([]Cell, 0, len(row)+1)
			out = append(out, WeekNumberCell(ISOWeekNumber(c.Date)))
			return append(out, row...)
		}
	}
	return row
}
