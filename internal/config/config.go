package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one scraped venue listing.
type SourceConfig struct {
	// Code is the short internal identifier used for snapshot file names
	// and logging (e.g. "a" for マリンメッセA館).
	Code string `yaml:"code" json:"code"`
	// Name is the venue name carried into every event record.
	Name string `yaml:"name" json:"name"`
	// URL is the event listing page.
	URL string `yaml:"url" json:"url"`
	// RowSelector targets the listing rows (primary selector).
	RowSelector string `yaml:"row_selector" json:"row_selector"`
	// FallbackSelector targets event-card style markup if the primary
	// selector matches nothing after a site redesign.
	FallbackSelector string `yaml:"fallback_selector,omitempty" json:"fallback_selector,omitempty"`
	// ListSelector, when set, switches extraction to definition-list
	// markup: dt elements carry explicit dates, dd elements carry detail
	// tables. Takes precedence over RowSelector.
	ListSelector string `yaml:"list_selector,omitempty" json:"list_selector,omitempty"`
	// Render runs the page through headless Chromium before extraction,
	// for listings built client-side.
	Render bool `yaml:"render,omitempty" json:"render,omitempty"`
}

// ManualEventConfig declares an operator-maintained event that survives
// every refresh. Either a fixed date or a recurrence rule.
type ManualEventConfig struct {
	Title string `yaml:"title" json:"title"`
	Venue string `yaml:"venue" json:"venue"`
	// Date is ISO YYYY-MM-DD for a one-off event. Ignored when RRule is set.
	Date string `yaml:"date,omitempty" json:"date,omitempty"`
	// Time is HH:MM; empty means time undetermined.
	Time string `yaml:"time,omitempty" json:"time,omitempty"`
	// RRule is an iCalendar recurrence rule (e.g. "FREQ=WEEKLY;BYDAY=SU")
	// expanded over the notification horizon.
	RRule string `yaml:"rrule,omitempty" json:"rrule,omitempty"`
	// DtStart anchors the recurrence, ISO YYYY-MM-DD. Required with RRule.
	DtStart string `yaml:"dtstart,omitempty" json:"dtstart,omitempty"`
}

// NotifyConfig holds delivery settings for the daily digest.
type NotifyConfig struct {
	// SlackWebhookURL is the incoming-webhook endpoint. Empty disables Slack.
	SlackWebhookURL string `yaml:"slack_webhook_url,omitempty" json:"slack_webhook_url,omitempty"`
	// LineNotifyToken is the LINE Notify bearer token. Empty disables LINE.
	LineNotifyToken string `yaml:"line_notify_token,omitempty" json:"line_notify_token,omitempty"`
	// DetailsURL is appended to every digest as the "details" link.
	DetailsURL string `yaml:"details_url,omitempty" json:"details_url,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the status API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA civil zone used to resolve "today" and the
	// implicit reference year (e.g. "Asia/Tokyo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron schedules the scrape+normalize refresh cycle.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DispatchCron schedules the daily digest delivery.
	DispatchCron string `yaml:"dispatch" json:"dispatch"`

	// HorizonDays bounds manual-event recurrence expansion and the ICS export.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// IncludeFuture keeps events beyond the target date in snapshots
	// instead of filtering to the target date only.
	IncludeFuture bool `yaml:"include_future" json:"include_future"`

	// StorageDir holds per-day per-source JSON snapshots.
	StorageDir string `yaml:"storage_dir" json:"storage_dir"`

	// SiteDir is where the static HTML page and ICS feed are written.
	SiteDir string `yaml:"site_dir" json:"site_dir"`

	// Sources is the ordered venue list; order is dedup priority.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// ManualEvents are operator-maintained entries merged at dispatch.
	ManualEvents []ManualEventConfig `yaml:"manual_events,omitempty" json:"manual_events,omitempty"`

	Notify NotifyConfig `yaml:"notify" json:"notify"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultSources lists the Fukuoka venues this service was built for,
// with the selector profiles observed on each site.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Code: "a", Name: "マリンメッセA館", URL: "https://www.marinemesse.or.jp/messe/event/", RowSelector: "table tr", FallbackSelector: ".event-list .event, .events .event, .eventItem"},
		{Code: "b", Name: "マリンメッセB館", URL: "https://www.marinemesse.or.jp/messe-b/event/", RowSelector: "table tr", FallbackSelector: ".event-list .event, .events .event, .eventItem"},
		{Code: "c", Name: "福岡国際センター", URL: "https://www.marinemesse.or.jp/kokusai/event/", RowSelector: "table tr", FallbackSelector: ".event-list .event, .events .event, .eventItem"},
		{Code: "d", Name: "福岡国際会議場", URL: "https://www.marinemesse.or.jp/congress/event/", RowSelector: "table tr", FallbackSelector: ".event-list .event, .events .event, .eventItem"},
		{Code: "e", Name: "福岡サンパレス", URL: "https://www.f-sunpalace.com/hall/", RowSelector: "table tr", FallbackSelector: ".event-list .event"},
		{Code: "f", Name: "みずほPayPayドーム", URL: "https://www.softbankhawks.co.jp/stadium/event_schedule/2025/", ListSelector: "dl.temp_calendarList"},
		{Code: "g", Name: "ベスト電器スタジアム", URL: "https://www.avispa.co.jp/game_practice", RowSelector: "table tr", FallbackSelector: ".game-list .game", Render: true},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Asia/Tokyo",
		RefreshCron:  "0 6 * * *",
		DispatchCron: "30 7 * * *",
		HorizonDays:  30,
		StorageDir:   "./storage",
		SiteDir:      "./site",
		Sources:      DefaultSources(),
		Notify:       NotifyConfig{},
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Tokyo"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 6 * * *"
	}
	if c.DispatchCron == "" {
		c.DispatchCron = "30 7 * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 30
	}
	if c.StorageDir == "" {
		c.StorageDir = "./storage"
	}
	if c.SiteDir == "" {
		c.SiteDir = "./site"
	}
	if c.Sources == nil {
		c.Sources = DefaultSources()
	}
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
//   - normalize defaults
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
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600 (webhook URLs and tokens
//     live in this file).
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

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".eventnotify-config-*.tmp")
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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
