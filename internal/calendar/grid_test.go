package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayColumns(row []Cell) int {
	n := 0
	for _, c := range row {
		if c.Kind != CellWeekNumber {
			n++
		}
	}
	return n
}

func TestBuildPageLeapFebruary(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())
	page := BuildPage(cfg, d(2024, time.February, 1))

	assert.Equal(t, d(2024, time.February, 1), page.CameraDate)
	assert.Equal(t, 3, page.OffsetStart)
	assert.Equal(t, 29, page.DayCount())
	require.Len(t, page.Weeks, 5)

	first := page.Weeks[0]
	for i := 0; i < 3; i++ {
		assert.Equal(t, OffsetCell(), first[i])
	}
	assert.Equal(t, DayCell(d(2024, time.February, 1)), first[3])
	assert.Equal(t, DayCell(d(2024, time.February, 4)), first[6])

	last := page.Weeks[4]
	require.Len(t, last, 4)
	assert.Equal(t, DayCell(d(2024, time.February, 26)), last[0])
	assert.Equal(t, DayCell(d(2024, time.February, 29)), last[3])
}

func TestBuildPageMonthStartingMonday(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024())
	page := BuildPage(cfg, d(2024, time.April, 17))

	assert.Equal(t, d(2024, time.April, 1), page.CameraDate)
	assert.Equal(t, 0, page.OffsetStart)
	assert.Equal(t, DayCell(d(2024, time.April, 1)), page.Weeks[0][0])
	assert.Equal(t, 30, page.DayCount())
	assert.Len(t, page.Weeks[len(page.Weeks)-1], 2)
}

func TestBuildPageWeekNumbers(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024(), WithWeekNumbers(true))
	page := BuildPage(cfg, d(2024, time.February, 1))

	require.Len(t, page.Weeks, 5)
	wantWeeks := []int{5, 6, 7, 8, 9}
	for i, row := range page.Weeks {
		assert.Equal(t, WeekNumberCell(wantWeeks[i]), row[0], "row %d", i)
	}
	assert.Len(t, page.Weeks[0], 8)
	assert.Equal(t, OffsetCell(), page.Weeks[0][1])
}

func TestBuildPageWeekNumberAcrossYearEnd(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, Boundary{Start: d(2018, time.January, 1), End: d(2019, time.December, 31)}, WithWeekNumbers(true))
	page := BuildPage(cfg, d(2018, time.December, 1))

	last := page.Weeks[len(page.Weeks)-1]
	assert.Equal(t, WeekNumberCell(1), last[0])
	assert.Equal(t, DayCell(d(2018, time.December, 31)), last[1])
}

func TestBuildPageWeekStyle(t *testing.T) {
	cfg := mustConfig(t, StyleWeek, year2024())

	tests := []struct {
		name       string
		camera     Date
		wantCamera Date
		wantFirst  Date
	}{
		{"week reaching into previous month", d(2024, time.February, 1), d(2024, time.February, 1), d(2024, time.January, 29)},
		{"mid month", d(2024, time.February, 14), d(2024, time.February, 12), d(2024, time.February, 12)},
		{"month starting monday", d(2024, time.April, 3), d(2024, time.April, 1), d(2024, time.April, 1)},
		{"week reaching into next month", d(2024, time.February, 26), d(2024, time.February, 26), d(2024, time.February, 26)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildPage(cfg, tt.camera)
			assert.Equal(t, tt.wantCamera, page.CameraDate)
			assert.Equal(t, tt.wantFirst, page.WeekCameraDate)
			assert.Equal(t, 0, page.OffsetStart)
			require.Len(t, page.Weeks, 1)
			row := page.Weeks[0]
			require.Len(t, row, 7)
			for i, c := range row {
				assert.Equal(t, DayCell(tt.wantFirst.AddDays(i)), c)
			}
		})
	}
}

func TestBuildPageIsIdempotent(t *testing.T) {
	cfg := mustConfig(t, StyleMonth, year2024(), WithWeekNumbers(true))
	camera := StartOfWeekOrMonth(d(2024, time.September, 18))
	assert.Equal(t, BuildPage(cfg, camera), BuildPage(cfg, camera))

	week := mustConfig(t, StyleWeek, year2024())
	assert.Equal(t, BuildPage(week, camera), BuildPage(week, camera))
}

func TestBuildPageGridCompleteness(t *testing.T) {
	for _, weekNumbers := range []bool{false, true} {
		cfg := mustConfig(t, StyleMonth, year2024(), WithWeekNumbers(weekNumbers))
		for cur := d(2020, time.January, 1); cur.Before(d(2027, time.January, 1)); cur = cur.AddMonths(1) {
			page := BuildPage(cfg, cur)
			require.Equal(t, LengthOfMonth(cur), page.DayCount(), cur.String())

			for i, row := range page.Weeks {
				cols := dayColumns(row)
				if i < len(page.Weeks)-1 {
					require.Equal(t, 7, cols, "%s row %d", cur, i)
				} else {
					require.LessOrEqual(t, cols, 7, "%s last row", cur)
				}
				for j, c := range row {
					if c.Kind == CellOffset {
						require.Zero(t, i, "%s offset outside first row", cur)
						require.Less(t, j, page.OffsetStart+1, "%s offset after a day", cur)
					}
				}
			}
		}
	}
}
