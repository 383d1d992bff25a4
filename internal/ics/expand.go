package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"sheetcal/internal/calendar"
	appLog "sheetcal/internal/log"
	"sheetcal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how events are turned into blackout days.
type ExpandConfig struct {
	// DisplayLocation decides which calendar day a timed event falls on.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// Window limits the produced days, both ends inclusive.
	Window calendar.Boundary

	// MaxOccurrencesPerEvent is a safety cap to avoid infinite or extremely
	// large expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded blackouts and information about
// truncation.
type ExpandResult struct {
	Blackouts []model.Blackout
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// ExpandBlackouts expands parsed events into one Blackout per covered day
// inside cfg.Window. It handles:
//
//   - Single non-recurring events
//   - RRULE-based recurrence
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides
//   - All-day semantics (DTEND is exclusive)
func ExpandBlackouts(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.Window.End.Before(cfg.Window.Start) {
		return result, errors.New("expand: window end is before window start")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	order := make([]string, 0)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, ok := baseByUID[ev.UID]; !ok {
			order = append(order, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range order {
		truncated := false
		for _, ev := range baseByUID[uid] {
			blackouts, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			if hitCap {
				truncated = true
			}
			result.Blackouts = append(result.Blackouts, blackouts...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Blackout, bool) {
	if ev.RawRRule == "" {
		start, end, src := ev.Start, ev.End, ev
		if o, ok := findOverrideForStart(overrides, start); ok {
			start, end, src = o.Start, o.End, o
		}
		return blackoutDays(src, ev.Start, start, end, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Blackout, bool) {
	out := make([]model.Blackout, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the window by the event duration so occurrences starting before
	// the window but still running into it are kept.
	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	rangeStart := windowStart(cfg).Add(-dur).In(loc)
	rangeEnd := windowEnd(cfg).In(loc)

	occTimes := set.Between(rangeStart, rangeEnd, true)
	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		start, end, src := occStart, occStart.Add(dur), ev
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			start, end, src = o.Start, o.End, o
		}
		out = append(out, blackoutDays(src, occStart, start, end, cfg)...)
	}

	return out, hitCap
}

// findOverrideForStart finds an override whose RECURRENCE-ID equals start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// blackoutDays returns one Blackout per day of [start, end) inside the
// window. All-day events keep their own calendar days; timed events are
// mapped into the display location and always cover their start day.
func blackoutDays(ev ParsedEvent, instance, start, end time.Time, cfg ExpandConfig) []model.Blackout {
	var first, last calendar.Date
	if ev.AllDay {
		first = calendar.FromTime(start)
		last = calendar.FromTime(end).AddDays(-1)
	} else {
		first = calendar.FromTime(start.In(cfg.DisplayLocation))
		last = calendar.FromTime(end.In(cfg.DisplayLocation))
		if end.After(start) && isMidnight(end.In(cfg.DisplayLocation)) {
			last = last.AddDays(-1)
		}
	}
	if last.Before(first) {
		last = first
	}
	if first.Before(cfg.Window.Start) {
		first = cfg.Window.Start
	}
	if last.After(cfg.Window.End) {
		last = cfg.Window.End
	}

	key := instance.In(cfg.DisplayLocation).Format(time.RFC3339)
	out := make([]model.Blackout, 0)
	for d := first; !d.After(last); d = d.AddDays(1) {
		out = append(out, model.Blackout{
			SourceID:    ev.Source.ID,
			UID:         ev.UID,
			InstanceKey: key,
			Summary:     ev.Summary,
			AllDay:      ev.AllDay,
			Date:        d,
		})
	}
	return out
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func windowStart(cfg ExpandConfig) time.Time {
	w := cfg.Window.Start
	return time.Date(w.Year, w.Month, w.Day, 0, 0, 0, 0, cfg.DisplayLocation)
}

func windowEnd(cfg ExpandConfig) time.Time {
	w := cfg.Window.End.AddDays(1)
	return time.Date(w.Year, w.Month, w.Day, 0, 0, 0, 0, cfg.DisplayLocation)
}
