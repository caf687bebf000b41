package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tiliavir/lma/internal/timecalc"
)

// Config is the root configuration for lma, stored in ~/.lma/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	API       APIConfig       `json:"api"`
	Display   DisplayConfig   `json:"display"`
	DayBounds DayBoundsConfig `json:"day_bounds"`
}

// APIConfig holds the backend connection settings.
type APIConfig struct {
	// BaseURL is the root of the REST API, e.g. "http://localhost:8000/api".
	BaseURL string `json:"base_url"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// DisplayConfig controls how times are rendered.
type DisplayConfig struct {
	// Timezone is an IANA timezone (e.g. "Europe/Berlin"). Empty = local time.
	Timezone string `json:"timezone"`
}

// DayBoundsConfig is the planned waking window used for the day timeline.
type DayBoundsConfig struct {
	Wake  string `json:"wake"`
	Sleep string `json:"sleep"`
}

const (
	DefaultBaseURL        = "http://localhost:8000/api"
	DefaultTimeoutSeconds = 15
	DefaultWake           = "07:00"
	DefaultSleep          = "23:00"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		DayBounds: DayBoundsConfig{
			Wake:  DefaultWake,
			Sleep: DefaultSleep,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// lma configuration – ~/.lma/config.json
//
// All settings are optional; missing values fall back to the defaults below.
{
  // ── Backend ──────────────────────────────────────────────────────────────
  "api": {
    // Root URL of the REST API.
    "base_url": "http://localhost:8000/api",

    // Per-request timeout in seconds.
    "timeout_seconds": 15
  },

  // ── Display ──────────────────────────────────────────────────────────────
  "display": {
    // IANA timezone for printed times, e.g. "Europe/Berlin".
    // Leave empty to use the local timezone.
    "timezone": ""
  },

  // ── Day timeline ─────────────────────────────────────────────────────────
  // Waking window used by: lma blocks list --today
  "day_bounds": {
    "wake": "07:00",
    "sleep": "23:00"
  }
}
`

// FilePath returns the config file location under base.
func FilePath(base string) string {
	return filepath.Join(base, "config.json")
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads <base>/config.json, creating it with annotated defaults on first
// run.
func Load(base string) (Config, error) {
	path := FilePath(base)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields so a partially filled file still works.
	def := defaultConfig()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = def.API.TimeoutSeconds
	}
	if cfg.DayBounds.Wake == "" {
		cfg.DayBounds.Wake = def.DayBounds.Wake
	}
	if cfg.DayBounds.Sleep == "" {
		cfg.DayBounds.Sleep = def.DayBounds.Sleep
	}

	if err := cfg.Validate(); err != nil {
		return defaultConfig(), fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	day := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	wake, err := timecalc.AtClock(day, c.DayBounds.Wake)
	if err != nil {
		return fmt.Errorf("day_bounds.wake: %w", err)
	}
	sleep, err := timecalc.AtClock(day, c.DayBounds.Sleep)
	if err != nil {
		return fmt.Errorf("day_bounds.sleep: %w", err)
	}
	if !wake.Before(sleep) {
		return fmt.Errorf("day_bounds.wake (%s) must be before day_bounds.sleep (%s)", c.DayBounds.Wake, c.DayBounds.Sleep)
	}
	return nil
}

// Location resolves Display.Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("display.timezone %q: %w", c.Display.Timezone, err)
	}
	return loc, nil
}

// Timeout returns the per-request HTTP timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// DayWindow returns the waking window of the day containing t.
func (c Config) DayWindow(t time.Time) (from, to time.Time, err error) {
	if from, err = timecalc.AtClock(t, c.DayBounds.Wake); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to, err = timecalc.AtClock(t, c.DayBounds.Sleep); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
