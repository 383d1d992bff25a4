package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Style selects how much of the calendar a page shows.
type Style string

const (
	StyleMonth Style = "month"
	StyleWeek  Style = "week"
)

// ParseStyle maps a case-insensitive name to a Style. Empty input means month.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleMonth:
		return StyleMonth, nil
	case StyleWeek:
		return StyleWeek, nil
	default:
		return "", fmt.Errorf("%w: unknown style %q", ErrInvalidConfig, s)
	}
}

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid calendar config")

// Boundary is the inclusive range of selectable dates.
type Boundary struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// Contains reports whether d lies within the boundary, both ends inclusive.
func (b Boundary) Contains(d Date) bool {
	return !d.Before(b.Start) && !d.After(b.End)
}

// Config describes a calendar page independent of the current selection.
// Build it with NewConfig; a Config is never modified after construction.
type Config struct {
	Style              Style `validate:"oneof=month week"`
	Boundary           Boundary
	DisplayWeekNumbers bool

	disabled map[Date]struct{}
}

// Option customizes a Config built by NewConfig.
type Option func(*Config)

// WithDisabledDates marks dates as explicitly not selectable.
func WithDisabledDates(dates ...Date) Option {
	return func(c *Config) {
		if c.disabled == nil {
			c.disabled = make(map[Date]struct{}, len(dates))
		}
		for _, d := range dates {
			c.disabled[d] = struct{}{}
		}
	}
}

// WithWeekNumbers toggles the leading ISO week number column.
func WithWeekNumbers(enabled bool) Option {
	return func(c *Config) {
		c.DisplayWeekNumbers = enabled
	}
}

// NewConfig builds and validates a Config. An empty style means month.
func NewConfig(style Style, boundary Boundary, opts ...Option) (Config, error) {
	if style == "" {
		style = StyleMonth
	}
	cfg := Config{Style: style, Boundary: boundary}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDisabled reports whether d was explicitly disabled.
func (c Config) IsDisabled(d Date) bool {
	_, ok := c.disabled[d]
	return ok
}

// DisabledDates returns the explicitly disabled dates in ascending order.
func (c Config) DisabledDates() []Date {
	out := make([]Date, 0, len(c.disabled))
	for d := range c.disabled {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Selectable reports whether d may be part of a selection.
func (c Config) Selectable(d Date) bool {
	return c.Boundary.Contains(d) && !c.IsDisabled(d)
}

// Validate checks the configuration. The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return convertValidationError(err)
	}
	return nil
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterStructValidation(validateBoundary, Boundary{})
		validateInst = v
	})
	return validateInst
}

func validateBoundary(sl validator.StructLevel) {
	b := sl.Current().Interface().(Boundary)
	if b.Start.IsZero() {
		sl.ReportError(b.Start, "Start", "start", "required", "")
	}
	if b.End.IsZero() {
		sl.ReportError(b.End, "End", "end", "required", "")
	}
	if b.Start.After(b.End) {
		sl.ReportError(b.End, "End", "end", "gtestart", b.Start.String())
	}
}

func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "gtestart":
			msgs = append(msgs, fmt.Sprintf("%s %v is before boundary start %s", fe.Namespace(), fe.Value(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
