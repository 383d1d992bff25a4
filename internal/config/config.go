package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"sheetcal/internal/calendar"
)

// ICSConfig describes a single ICS subscription whose events block dates.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url" validate:"required,url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CalendarConfig is the on-disk form of calendar.Config.
type CalendarConfig struct {
	// Style is "month" (default) or "week".
	Style              string            `yaml:"style" json:"style" validate:"oneof=month week"`
	Boundary           calendar.Boundary `yaml:"boundary" json:"boundary"`
	DisplayWeekNumbers bool              `yaml:"display_week_numbers" json:"display_week_numbers"`
	DisabledDates      []calendar.Date   `yaml:"disabled_dates" json:"disabled_dates"`
}

// LogConfig controls internal/log.
type LogConfig struct {
	Level      string `yaml:"level" json:"level" validate:"oneof=debug info error"`
	JSON       bool   `yaml:"json" json:"json"`
	File       string `yaml:"file,omitempty" json:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"gte=0"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen" validate:"required,hostname_port"`

	// Timezone is the IANA timezone that defines "today" and the calendar
	// day of feed events (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone" validate:"required"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic refresh of ICS blackout feeds.
	RefreshCron string `yaml:"refresh" json:"refresh" validate:"required"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`

	// ICS is the list of subscribed blackout sources.
	ICS []ICSConfig `yaml:"ics" json:"ics" validate:"dive"`

	Log LogConfig `yaml:"log" json:"log"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultTimezone = "UTC"
	defaultRefresh  = "*/15 * * * *"
	defaultCacheDir = "./var/ics-cache"
)

// DefaultConfig returns an in-memory default configuration. The default
// boundary spans the current year and the next one.
func DefaultConfig() *Config {
	now := time.Now()
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		RefreshCron: defaultRefresh,
		CacheDir:    defaultCacheDir,
		Calendar: CalendarConfig{
			Style: string(calendar.StyleMonth),
			Boundary: calendar.Boundary{
				Start: calendar.Date{Year: now.Year(), Month: time.January, Day: 1},
				End:   calendar.Date{Year: now.Year() + 1, Month: time.December, Day: 31},
			},
			DisabledDates: []calendar.Date{},
		},
		ICS: []ICSConfig{},
		Log: LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	c.Calendar.Style = strings.ToLower(strings.TrimSpace(c.Calendar.Style))
	if c.Calendar.Style == "" {
		c.Calendar.Style = string(calendar.StyleMonth)
	}
	if c.Calendar.Boundary == (calendar.Boundary{}) {
		c.Calendar.Boundary = DefaultConfig().Calendar.Boundary
	}
	if c.Calendar.DisabledDates == nil {
		c.Calendar.DisabledDates = []calendar.Date{}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			if c.ICS[i].Name != "" {
				c.ICS[i].ID = c.ICS[i].Name
			} else {
				c.ICS[i].ID = c.ICS[i].URL
			}
		}
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks field constraints, the timezone, the refresh schedule and
// the calendar settings.
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("config: refresh schedule %q: %w", c.RefreshCron, err)
	}
	if _, err := c.BuildCalendar(); err != nil {
		return err
	}
	return nil
}

// BuildCalendar converts the calendar section into a validated
// calendar.Config. extraDisabled is merged into the static disabled dates.
func (c *Config) BuildCalendar(extraDisabled ...calendar.Date) (calendar.Config, error) {
	style, err := calendar.ParseStyle(c.Calendar.Style)
	if err != nil {
		return calendar.Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := calendar.NewConfig(style, c.Calendar.Boundary,
		calendar.WithWeekNumbers(c.Calendar.DisplayWeekNumbers),
		calendar.WithDisabledDates(c.Calendar.DisabledDates...),
		calendar.WithDisabledDates(extraDisabled...),
	)
	if err != nil {
		return calendar.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sheetcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
