package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetcal/internal/blackout"
	"sheetcal/internal/calendar"
	"sheetcal/internal/config"
	"sheetcal/internal/model"
)

func d(m time.Month, day int) calendar.Date {
	return calendar.Date{Year: 2024, Month: m, Day: day}
}

func newTestServer(t *testing.T, auth *config.BasicAuthConfig) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Calendar.Boundary = calendar.Boundary{Start: d(time.January, 1), End: d(time.December, 31)}
	cfg.Calendar.DisabledDates = []calendar.Date{d(time.February, 14)}
	cfg.BasicAuth = auth

	store := blackout.NewStore(cfg.Calendar.DisabledDates...)
	store.Replace([]model.Blackout{{SourceID: "feed", UID: "trip", Summary: "Trip", AllDay: true, Date: d(time.February, 20)}})

	s := NewServer(cfg, store)
	s.now = func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) }
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func findCell(t *testing.T, resp pageResponse, date calendar.Date) cellDTO {
	t.Helper()
	for _, row := range resp.Weeks {
		for _, c := range row {
			if c.Date != nil && *c.Date == date {
				return c
			}
		}
	}
	t.Fatalf("cell %s not found", date)
	return cellDTO{}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &config.BasicAuthConfig{Username: "admin", Password: "secret"})
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBasicAuth(t *testing.T) {
	h := newTestServer(t, &config.BasicAuthConfig{Username: "admin", Password: "secret"})

	rec := do(t, h, http.MethodGet, "/api/years", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/years", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/years", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageWithRange(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/page?date=2024-02-10&today=2024-02-05&mode=range&start=2024-02-05&end=2024-02-12", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[pageResponse](t, rec)
	assert.Equal(t, d(time.February, 1), resp.CameraDate)
	assert.Equal(t, calendar.StyleMonth, resp.Style)
	assert.Equal(t, 3, resp.OffsetStart)
	assert.Equal(t, d(time.January, 1), resp.Prev)
	assert.Equal(t, d(time.March, 1), resp.Next)
	require.Len(t, resp.Weeks, 5)
	assert.Equal(t, "offset", resp.Weeks[0][0].Kind)
	assert.Nil(t, resp.Weeks[0][0].State)

	start := findCell(t, resp, d(time.February, 5))
	require.NotNil(t, start.State)
	assert.True(t, start.State.SelectedRangeStart)
	assert.True(t, start.State.Today)

	between := findCell(t, resp, d(time.February, 8))
	assert.True(t, between.State.SelectedBetween)

	end := findCell(t, resp, d(time.February, 12))
	assert.True(t, end.State.SelectedRangeEnd)

	assert.True(t, findCell(t, resp, d(time.February, 14)).State.Disabled, "static disabled date")
	assert.True(t, findCell(t, resp, d(time.February, 20)).State.Disabled, "feed blackout")
}

func TestPageDefaultsToToday(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/page?week_numbers=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[pageResponse](t, rec)
	assert.Equal(t, d(time.March, 1), resp.CameraDate)
	assert.Equal(t, d(time.March, 10), resp.Today)
	for _, row := range resp.Weeks {
		require.NotEmpty(t, row)
		assert.Equal(t, "week_number", row[0].Kind)
	}
	assert.Equal(t, 9, resp.Weeks[0][0].ISOWeek)
	assert.True(t, findCell(t, resp, d(time.March, 10)).State.Today)
}

func TestPageWeekStyle(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/page?date=2024-05-02&style=week&mode=multiple&selected=2024-05-02,2024-05-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[pageResponse](t, rec)
	assert.Equal(t, calendar.StyleWeek, resp.Style)
	assert.Equal(t, d(time.May, 1), resp.CameraDate)
	assert.Equal(t, d(time.April, 29), resp.WeekCameraDate)
	require.Len(t, resp.Weeks, 1)
	assert.True(t, findCell(t, resp, d(time.May, 2)).State.Selected)
	assert.True(t, findCell(t, resp, d(time.May, 3)).State.Selected)
	assert.Nil(t, findCell(t, resp, d(time.April, 30)).State, "previous month cell carries no state")
}

func TestPageBadRequests(t *testing.T) {
	h := newTestServer(t, nil)
	for _, target := range []string{
		"/api/page?date=2024-13-01",
		"/api/page?style=year",
		"/api/page?week_numbers=maybe",
		"/api/page?mode=some",
		"/api/page?mode=range&end=2024-02-01",
		"/api/page?selected=2024-02-01,2024-02-02",
		"/api/page?today=tomorrow",
	} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
}

func TestJump(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		target string
		want   calendar.Date
	}{
		{"/api/jump?date=2024-02-10&dir=next", d(time.March, 1)},
		{"/api/jump?date=2024-02-10&dir=prev", d(time.January, 1)},
		{"/api/jump?date=2024-02-01&dir=prev&style=week", d(time.January, 29)},
		{"/api/jump?date=2024-01-29&dir=next&style=week", d(time.February, 1)},
	}
	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, tt.target, "")
		require.Equal(t, http.StatusOK, rec.Code, tt.target)
		assert.Equal(t, tt.want, decode[map[string]calendar.Date](t, rec)["date"], tt.target)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/jump?dir=next", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/jump?date=2024-02-01&dir=up", "").Code)
}

func TestMonthsAndYears(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/api/months?date=2024-06-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	months := decode[monthsResponse](t, rec)
	assert.Equal(t, monthsResponse{Year: 2024, Selected: 6, ThisMonth: 3, Disabled: []int{}}, months)

	rec = do(t, h, http.MethodGet, "/api/months?date=2025-06-15", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[monthsResponse](t, rec).Disabled, 12)

	rec = do(t, h, http.MethodGet, "/api/years", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2024}, decode[map[string][]int](t, rec)["years"])
}

func TestSelect(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/select", `{"mode":"range","start":"2024-02-05","date":"2024-02-09"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sel := decode[selectionDTO](t, rec)
	assert.Equal(t, "range", sel.Mode)
	require.NotNil(t, sel.Start)
	require.NotNil(t, sel.End)
	assert.Equal(t, d(time.February, 5), *sel.Start)
	assert.Equal(t, d(time.February, 9), *sel.End)

	rec = do(t, h, http.MethodPost, "/api/select", `{"mode":"multiple","selected":["2024-03-01","2024-03-02"],"date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []calendar.Date{d(time.March, 2)}, decode[selectionDTO](t, rec).Selected)

	rec = do(t, h, http.MethodPost, "/api/select", `{"date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, selectionDTO{Mode: "single", Selected: []calendar.Date{d(time.March, 1)}}, decode[selectionDTO](t, rec))
}

func TestSelectRejections(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"static disabled", `{"mode":"single","date":"2024-02-14"}`, http.StatusUnprocessableEntity},
		{"feed blackout", `{"mode":"single","date":"2024-02-20"}`, http.StatusUnprocessableEntity},
		{"outside boundary", `{"mode":"single","date":"2025-01-01"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"mode":`, http.StatusBadRequest},
		{"unknown field", `{"mode":"single","date":"2024-03-01","extra":1}`, http.StatusBadRequest},
		{"missing date", `{"mode":"single"}`, http.StatusBadRequest},
		{"bad date", `{"mode":"single","date":"03/01/2024"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/select", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/select", "").Code)
}

func TestBlackouts(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/blackouts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[blackoutsResponse](t, rec)
	assert.Equal(t, []calendar.Date{d(time.February, 14), d(time.February, 20)}, resp.Dates)
	require.Len(t, resp.Blackouts, 1)
	assert.Equal(t, "trip", resp.Blackouts[0].UID)
	assert.NotNil(t, resp.UpdatedAt)
}
