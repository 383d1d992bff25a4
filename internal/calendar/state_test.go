package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, cfg Config, sel Selection, date Date) CellState {
	t.Helper()
	page := BuildPage(cfg, date)
	st, ok := ResolveCellState(DayCell(date), page, sel, cfg, d(2024, time.January, 15))
	require.True(t, ok, "expected state for %s", date)
	return st
}

func TestResolveRangeSelection(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())
	sel := Range{Start: d(2024, time.March, 10), End: d(2024, time.March, 15)}

	between := resolve(t, cfg, sel, d(2024, time.March, 12))
	assert.True(t, between.SelectedBetween)
	assert.False(t, between.SelectedRangeStart)
	assert.False(t, between.SelectedRangeEnd)
	assert.True(t, between.Selected)

	start := resolve(t, cfg, sel, d(2024, time.March, 10))
	assert.True(t, start.SelectedRangeStart)
	assert.False(t, start.SelectedBetween)
	assert.True(t, start.Selected)

	end := resolve(t, cfg, sel, d(2024, time.March, 15))
	assert.True(t, end.SelectedRangeEnd)
	assert.False(t, end.SelectedBetween)
	assert.True(t, end.Selected)

	outside := resolve(t, cfg, sel, d(2024, time.March, 16))
	assert.False(t, outside.Selected)
}

func TestResolveRangeInProgressStartNotSelected(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())
	sel := Range{Start: d(2024, time.March, 10)}

	start := resolve(t, cfg, sel, d(2024, time.March, 10))
	assert.False(t, start.Selected)
	assert.False(t, start.SelectedRangeStart)
	assert.False(t, start.SelectedRangeEnd)

	later := resolve(t, cfg, sel, d(2024, time.March, 12))
	assert.False(t, later.Selected)
	assert.False(t, later.SelectedBetween)
}

func TestResolveReversedRangeIsSwapped(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())
	sel := Range{Start: d(2024, time.March, 15), End: d(2024, time.March, 10)}

	assert.True(t, resolve(t, cfg, sel, d(2024, time.March, 10)).SelectedRangeStart)
	assert.True(t, resolve(t, cfg, sel, d(2024, time.March, 12)).SelectedBetween)
	assert.True(t, resolve(t, cfg, sel, d(2024, time.March, 15)).SelectedRangeEnd)
}

func TestResolveSingleAndMultiple(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())

	single := SingleDate{Selected: d(2024, time.May, 2)}
	assert.True(t, resolve(t, cfg, single, d(2024, time.May, 2)).Selected)
	assert.False(t, resolve(t, cfg, single, d(2024, time.May, 3)).Selected)
	assert.False(t, resolve(t, cfg, SingleDate{}, d(2024, time.May, 3)).Selected)

	multi := NewMultipleDates(d(2024, time.May, 2), d(2024, time.May, 9))
	assert.True(t, resolve(t, cfg, multi, d(2024, time.May, 9)).Selected)
	assert.False(t, resolve(t, cfg, multi, d(2024, time.May, 10)).Selected)
}

func TestResolveNeverSelectsOutsideBoundary(t *testing.T) {
	b := Boundary{Start: d(2024, time.February, 10), End: d(2024, time.February, 20)}
	disabled := d(2024, time.February, 15)
	cfg := mustConfig(t, StyleMonth, b, WithDisabledDates(disabled))

	all := make([]Date, 0, 29)
	for cur := d(2024, time.February, 1); cur.Month == time.February; cur = cur.AddDays(1) {
		all = append(all, cur)
	}
	selections := []Selection{
		SingleDate{Selected: d(2024, time.February, 5)},
		NewMultipleDates(all...),
		Range{Start: d(2024, time.February, 1), End: d(2024, time.February, 29)},
	}

	for _, sel := range selections {
		for _, date := range all {
			st := resolve(t, cfg, sel, date)
			if !b.Contains(date) {
				assert.True(t, st.DisabledPassively, date.String())
				assert.False(t, st.Selected, "%T %s", sel, date)
				assert.False(t, st.SelectedBetween, "%T %s", sel, date)
				assert.False(t, st.SelectedRangeStart, "%T %s", sel, date)
				assert.False(t, st.SelectedRangeEnd, "%T %s", sel, date)
			}
		}
		st := resolve(t, cfg, sel, disabled)
		assert.True(t, st.Disabled)
		assert.False(t, st.DisabledPassively)
		assert.False(t, st.Selected)
	}
}

func TestResolveUnreachableMonthIsPassivelyDisabled(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, Boundary{Start: d(2024, time.June, 1), End: d(2024, time.June, 30)})
	page := BuildPage(cfg, d(2024, time.March, 1))
	require.Equal(t, 31, page.DayCount())

	states := ResolvePage(page, SingleDate{}, cfg, d(2024, time.June, 3))
	for i, row := range page.Weeks {
		for j, c := range row {
			if c.Kind != CellDay {
				assert.Nil(t, states[i][j])
				continue
			}
			require.NotNil(t, states[i][j])
			assert.True(t, states[i][j].DisabledPassively)
		}
	}
}

func TestResolveSkipsNonDayAndForeignMonthCells(t *testing.T) {
	cfg := mustConfig(t, StyleWeek, year2024(), WithWeekNumbers(true))
	page := BuildPage(cfg, d(2024, time.February, 1))
	row := page.Weeks[0]
	require.Len(t, row, 8)

	_, ok := ResolveCellState(row[0], page, SingleDate{}, cfg, d(2024, time.February, 1))
	assert.False(t, ok, "week number cell")

	_, ok = ResolveCellState(row[1], page, SingleDate{}, cfg, d(2024, time.February, 1))
	assert.False(t, ok, "january day on a february week page")

	st, ok := ResolveCellState(row[4], page, SingleDate{}, cfg, d(2024, time.February, 1))
	require.True(t, ok)
	assert.Equal(t, d(2024, time.February, 1), st.Date)
	assert.True(t, st.Today)

	_, ok = ResolveCellState(OffsetCell(), page, SingleDate{}, cfg, d(2024, time.February, 1))
	assert.False(t, ok)
}

func TestResolvePageShape(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())
	page := BuildPage(cfg, d(2024, time.February, 1))
	states := ResolvePage(page, SingleDate{Selected: d(2024, time.February, 14)}, cfg, d(2024, time.February, 2))

	require.Len(t, states, len(page.Weeks))
	for i := range page.Weeks {
		require.Len(t, states[i], len(page.Weeks[i]))
	}
	assert.Nil(t, states[0][0])
	require.NotNil(t, states[0][4])
	assert.True(t, states[0][4].Today)
	require.NotNil(t, states[2][2])
	assert.True(t, states[2][2].Selected)
	assert.Equal(t, d(2024, time.February, 14), states[2][2].Date)
}
