package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sheetcal/internal/calendar"
	appLog "sheetcal/internal/log"
)

const maxSelectBody = 1 << 20

// pageResponse is the JSON response shape for /api/page.
type pageResponse struct {
	CameraDate     calendar.Date  `json:"camera_date"`
	WeekCameraDate calendar.Date  `json:"week_camera_date"`
	Style          calendar.Style `json:"style"`
	OffsetStart    int            `json:"offset_start"`
	Today          calendar.Date  `json:"today"`
	Prev           calendar.Date  `json:"prev"`
	Next           calendar.Date  `json:"next"`
	Weeks          [][]cellDTO    `json:"weeks"`
}

type cellDTO struct {
	Kind    string         `json:"kind"`
	Date    *calendar.Date `json:"date,omitempty"`
	ISOWeek int            `json:"iso_week,omitempty"`
	State   *cellStateDTO  `json:"state,omitempty"`
}

type cellStateDTO struct {
	Disabled           bool `json:"disabled"`
	DisabledPassively  bool `json:"disabled_passively"`
	Selected           bool `json:"selected"`
	SelectedRangeStart bool `json:"selected_range_start"`
	SelectedRangeEnd   bool `json:"selected_range_end"`
	SelectedBetween    bool `json:"selected_between"`
	Today              bool `json:"today"`
}

// selectionDTO is the wire form of calendar.Selection, used both in
// requests and responses.
type selectionDTO struct {
	Mode     string          `json:"mode"`
	Selected []calendar.Date `json:"selected"`
	Start    *calendar.Date  `json:"start,omitempty"`
	End      *calendar.Date  `json:"end,omitempty"`
}

type selectRequest struct {
	selectionDTO
	Date calendar.Date `json:"date"`
}

type monthsResponse struct {
	Year      int   `json:"year"`
	Selected  int   `json:"selected"`
	ThisMonth int   `json:"this_month"`
	Disabled  []int `json:"disabled"`
}

type blackoutDTO struct {
	SourceID string        `json:"source_id"`
	UID      string        `json:"uid"`
	Summary  string        `json:"summary"`
	AllDay   bool          `json:"all_day"`
	Date     calendar.Date `json:"date"`
}

type blackoutsResponse struct {
	Dates     []calendar.Date `json:"dates"`
	Blackouts []blackoutDTO   `json:"blackouts"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// viewOptions are per-request overrides of the configured calendar.
type viewOptions struct {
	style       calendar.Style
	weekNumbers *bool
}

// handlePage builds a page and resolves every day cell.
//
// GET /api/page?date=2024-02-10&style=week&week_numbers=true&mode=range&start=2024-02-05&end=2024-02-12
//   - date:     any day of the page; defaults to the initial camera date
//   - today:    overrides the current day in the configured timezone
//   - mode:     single (default), multiple or range
//   - selected: comma separated dates for single/multiple
//   - start/end: range bounds
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := parseViewOptions(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	today, err := s.today(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dto, err := selectionFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sel, err := dto.toSelection()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	camera, hasCamera, err := parseDateParam(q, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := s.calendarConfig(opts)
	if err != nil {
		appLog.Error("api page: calendar config failed", err)
		writeError(w, http.StatusInternalServerError, "invalid calendar configuration")
		return
	}
	if !hasCamera {
		camera = calendar.InitialCameraDate(sel, cfg.Boundary, today)
	}

	page := calendar.BuildPage(cfg, camera)
	states := calendar.ResolvePage(page, sel, cfg, today)

	resp := pageResponse{
		CameraDate:     page.CameraDate,
		WeekCameraDate: page.WeekCameraDate,
		Style:          page.Style,
		OffsetStart:    page.OffsetStart,
		Today:          today,
		Prev:           calendar.JumpPrev(page.CameraDate, cfg),
		Next:           calendar.JumpNext(page.CameraDate, cfg),
		Weeks:          make([][]cellDTO, len(page.Weeks)),
	}
	for i, row := range page.Weeks {
		resp.Weeks[i] = make([]cellDTO, len(row))
		for j, cell := range row {
			resp.Weeks[i][j] = toCellDTO(cell, states[i][j])
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleJump returns the camera date of the previous or next page.
//
// GET /api/jump?date=2024-02-01&dir=next&style=week
func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := parseViewOptions(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, ok, err := parseDateParam(q, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	cfg, err := s.calendarConfig(opts)
	if err != nil {
		appLog.Error("api jump: calendar config failed", err)
		writeError(w, http.StatusInternalServerError, "invalid calendar configuration")
		return
	}

	d = calendar.NormalizeCameraDate(d, cfg.Style)
	var target calendar.Date
	switch strings.ToLower(q.Get("dir")) {
	case "prev":
		target = calendar.JumpPrev(d, cfg)
	case "next", "":
		target = calendar.JumpNext(d, cfg)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("dir must be prev or next, got %q", q.Get("dir")))
		return
	}
	writeJSON(w, http.StatusOK, map[string]calendar.Date{"date": target})
}

// handleMonths returns month picker data for the year of date.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	today, err := s.today(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	camera, ok, err := parseDateParam(q, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		camera = today
	}
	cfg, err := s.calendarConfig(viewOptions{})
	if err != nil {
		appLog.Error("api months: calendar config failed", err)
		writeError(w, http.StatusInternalServerError, "invalid calendar configuration")
		return
	}

	mp := calendar.MonthData(cfg, camera, today)
	resp := monthsResponse{
		Year:      camera.Year,
		Selected:  int(mp.Selected),
		ThisMonth: int(mp.ThisMonth),
		Disabled:  make([]int, 0, len(mp.Disabled)),
	}
	for _, m := range mp.Disabled {
		resp.Disabled = append(resp.Disabled, int(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.calendarConfig(viewOptions{})
	if err != nil {
		appLog.Error("api years: calendar config failed", err)
		writeError(w, http.StatusInternalServerError, "invalid calendar configuration")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"years": calendar.Years(cfg)})
}

// handleSelect applies a tap on req.Date to the posted selection.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	sel, err := req.toSelection()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := s.calendarConfig(viewOptions{})
	if err != nil {
		appLog.Error("api select: calendar config failed", err)
		writeError(w, http.StatusInternalServerError, "invalid calendar configuration")
		return
	}

	next, err := calendar.Select(sel, req.Date, cfg)
	if errors.Is(err, calendar.ErrDateNotSelectable) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, selectionToDTO(next))
}

func (s *Server) handleBlackouts(w http.ResponseWriter, _ *http.Request) {
	resp := blackoutsResponse{
		Dates:     s.store.Dates(),
		Blackouts: []blackoutDTO{},
	}
	for _, b := range s.store.Blackouts() {
		resp.Blackouts = append(resp.Blackouts, blackoutDTO{
			SourceID: b.SourceID,
			UID:      b.UID,
			Summary:  b.Summary,
			AllDay:   b.AllDay,
			Date:     b.Date,
		})
	}
	if t := s.store.UpdatedAt(); !t.IsZero() {
		resp.UpdatedAt = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// calendarConfig builds the effective calendar: configured settings, the
// store's disabled dates and the request overrides.
func (s *Server) calendarConfig(opts viewOptions) (calendar.Config, error) {
	base, err := s.cfg.BuildCalendar(s.store.Dates()...)
	if err != nil {
		return calendar.Config{}, err
	}
	style := base.Style
	if opts.style != "" {
		style = opts.style
	}
	weekNumbers := base.DisplayWeekNumbers
	if opts.weekNumbers != nil {
		weekNumbers = *opts.weekNumbers
	}
	if style == base.Style && weekNumbers == base.DisplayWeekNumbers {
		return base, nil
	}
	return calendar.NewConfig(style, base.Boundary,
		calendar.WithDisabledDates(base.DisabledDates()...),
		calendar.WithWeekNumbers(weekNumbers),
	)
}

func (s *Server) today(q url.Values) (calendar.Date, error) {
	d, ok, err := parseDateParam(q, "today")
	if err != nil || ok {
		return d, err
	}
	return calendar.FromTime(s.now().In(s.cfg.Location())), nil
}

func parseViewOptions(q url.Values) (viewOptions, error) {
	var opts viewOptions
	if v := q.Get("style"); v != "" {
		style, err := calendar.ParseStyle(v)
		if err != nil {
			return opts, err
		}
		opts.style = style
	}
	if v := q.Get("week_numbers"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("week_numbers: %w", err)
		}
		opts.weekNumbers = &b
	}
	return opts, nil
}

func parseDateParam(q url.Values, name string) (calendar.Date, bool, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return calendar.Date{}, false, nil
	}
	d, err := calendar.ParseDate(v)
	if err != nil {
		return calendar.Date{}, false, fmt.Errorf("%s: %w", name, err)
	}
	return d, true, nil
}

func selectionFromQuery(q url.Values) (selectionDTO, error) {
	dto := selectionDTO{Mode: q.Get("mode")}
	for _, part := range strings.Split(q.Get("selected"), ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := calendar.ParseDate(part)
		if err != nil {
			return dto, fmt.Errorf("selected: %w", err)
		}
		dto.Selected = append(dto.Selected, d)
	}
	for _, name := range []string{"start", "end"} {
		d, ok, err := parseDateParam(q, name)
		if err != nil {
			return dto, err
		}
		if !ok {
			continue
		}
		if name == "start" {
			dto.Start = &d
		} else {
			dto.End = &d
		}
	}
	return dto, nil
}

func (s selectionDTO) toSelection() (calendar.Selection, error) {
	switch strings.ToLower(s.Mode) {
	case "", "single":
		switch len(s.Selected) {
		case 0:
			return calendar.SingleDate{}, nil
		case 1:
			return calendar.SingleDate{Selected: s.Selected[0]}, nil
		default:
			return nil, errors.New("single mode accepts at most one selected date")
		}
	case "multiple":
		return calendar.NewMultipleDates(s.Selected...), nil
	case "range":
		var rg calendar.Range
		if s.Start != nil {
			rg.Start = *s.Start
		}
		if s.End != nil {
			if s.Start == nil {
				return nil, errors.New("range end given without start")
			}
			rg.End = *s.End
		}
		return rg, nil
	default:
		return nil, fmt.Errorf("mode must be single, multiple or range, got %q", s.Mode)
	}
}

func selectionToDTO(sel calendar.Selection) selectionDTO {
	out := selectionDTO{Selected: []calendar.Date{}}
	switch v := sel.(type) {
	case calendar.SingleDate:
		out.Mode = "single"
		if !v.Selected.IsZero() {
			out.Selected = append(out.Selected, v.Selected)
		}
	case calendar.MultipleDates:
		out.Mode = "multiple"
		out.Selected = v.Dates()
	case calendar.Range:
		out.Mode = "range"
		if !v.Start.IsZero() {
			start := v.Start
			out.Start = &start
		}
		if !v.End.IsZero() {
			end := v.End
			out.End = &end
		}
	}
	if out.Selected == nil {
		out.Selected = []calendar.Date{}
	}
	return out
}

func toCellDTO(cell calendar.Cell, st *calendar.CellState) cellDTO {
	out := cellDTO{Kind: cell.Kind.String()}
	switch cell.Kind {
	case calendar.CellDay:
		d := cell.Date
		out.Date = &d
	case calendar.CellWeekNumber:
		out.ISOWeek = cell.ISOWeek
	}
	if st != nil {
		out.State = &cellStateDTO{
			Disabled:           st.Disabled,
			DisabledPassively:  st.DisabledPassively,
			Selected:           st.Selected,
			SelectedRangeStart: st.SelectedRangeStart,
			SelectedRangeEnd:   st.SelectedRangeEnd,
			SelectedBetween:    st.SelectedBetween,
			Today:              st.Today,
		}
	}
	return out
}
