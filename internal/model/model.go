package model

import "sheetcal/internal/calendar"

// Blackout is a single calendar day made unavailable by a feed event. A
// multi-day event produces one Blackout per day it covers.
type Blackout struct {
	SourceID string // calendar source ID
	UID      string // iCalendar UID

	// InstanceKey identifies the occurrence of a recurring event the day
	// belongs to, derived from the occurrence start.
	InstanceKey string

	Summary string
	AllDay  bool

	// Date is the day in the configured display timezone.
	Date calendar.Date
}

// Dates returns the distinct days of blackouts in input order.
func Dates(blackouts []Blackout) []calendar.Date {
	seen := make(map[calendar.Date]struct{}, len(blackouts))
	out := make([]calendar.Date, 0, len(blackouts))
	for _, b := range blackouts {
		if _, ok := seen[b.Date]; ok {
			continue
		}
		seen[b.Date] = struct{}{}
		out = append(out, b.Date)
	}
	return out
}
