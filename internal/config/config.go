package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of "debug", "info", "error".
	Level string `yaml:"level" json:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format" json:"format"`
}

// SnapshotConfig controls PNG snapshots of the served page.
type SnapshotConfig struct {
	// Path is where the PNG is written and served from (/preview.png).
	Path string `yaml:"path" json:"path"`
	// Cron is a cron-style schedule (e.g. "*/15 * * * *"). Empty disables
	// periodic snapshots.
	Cron string `yaml:"cron" json:"cron"`
	// Width and Height of the browser viewport in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Page is the path of the host HTML page served at "/". Its widget
	// mounts are rendered on every request.
	Page string `yaml:"page" json:"page"`

	// APIBase is the classes API used by the /demo page.
	APIBase string `yaml:"api_base" json:"api_base"`

	// Language selects the display strings: "en" (default) or "ru".
	Language string `yaml:"language" json:"language"`

	// Timezone is the IANA zone used for the "updated" timestamp. Empty
	// means the process local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// TimestampLayout is a Go time layout for the "updated" timestamp.
	TimestampLayout string `yaml:"timestamp_layout" json:"timestamp_layout"`

	// HTTPTimeout bounds a single classes API request. Zero leaves the
	// transport defaults in place.
	HTTPTimeout time.Duration `yaml:"http_timeout" json:"http_timeout"`

	Log      LogConfig      `yaml:"log" json:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	DefaultListen          = "127.0.0.1:8080"
	DefaultPage            = "/etc/schedwidget/page.html"
	DefaultLanguage        = "en"
	DefaultTimestampLayout = "02.01.2006, 15:04:05"
	DefaultSnapshotPath    = "/var/lib/schedwidget/preview.png"
	DefaultSnapshotWidth   = 920
	DefaultSnapshotHeight  = 1200
)

// envOverrides lists the SCHEDWIDGET_* variables that take precedence over
// the YAML file. Empty values leave the file value untouched.
type envOverrides struct {
	Listen          string        `env:"SCHEDWIDGET_LISTEN"`
	Page            string        `env:"SCHEDWIDGET_PAGE"`
	APIBase         string        `env:"SCHEDWIDGET_API_BASE"`
	Language        string        `env:"SCHEDWIDGET_LANGUAGE"`
	Timezone        string        `env:"SCHEDWIDGET_TIMEZONE"`
	TimestampLayout string        `env:"SCHEDWIDGET_TIMESTAMP_LAYOUT"`
	HTTPTimeout     time.Duration `env:"SCHEDWIDGET_HTTP_TIMEOUT"`
	LogLevel        string        `env:"SCHEDWIDGET_LOG_LEVEL"`
	LogFormat       string        `env:"SCHEDWIDGET_LOG_FORMAT"`
	SnapshotPath    string        `env:"SCHEDWIDGET_SNAPSHOT_PATH"`
	SnapshotCron    string        `env:"SCHEDWIDGET_SNAPSHOT_CRON"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          DefaultListen,
		Page:            DefaultPage,
		Language:        DefaultLanguage,
		TimestampLayout: DefaultTimestampLayout,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Snapshot: SnapshotConfig{
			Path:   DefaultSnapshotPath,
			Width:  DefaultSnapshotWidth,
			Height: DefaultSnapshotHeight,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Page == "" {
		c.Page = DefaultPage
	}
	switch c.Language {
	case "en", "ru":
		// ok
	default:
		c.Language = DefaultLanguage
	}
	if c.TimestampLayout == "" {
		c.TimestampLayout = DefaultTimestampLayout
	}
	if c.HTTPTimeout < 0 {
		c.HTTPTimeout = 0
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format != "console" {
		c.Log.Format = "json"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = DefaultSnapshotWidth
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = DefaultSnapshotHeight
	}
}

// ApplyEnv overlays SCHEDWIDGET_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}

	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&c.Listen, o.Listen)
	setIf(&c.Page, o.Page)
	setIf(&c.APIBase, o.APIBase)
	setIf(&c.Language, o.Language)
	setIf(&c.Timezone, o.Timezone)
	setIf(&c.TimestampLayout, o.TimestampLayout)
	setIf(&c.Log.Level, o.LogLevel)
	setIf(&c.Log.Format, o.LogFormat)
	setIf(&c.Snapshot.Path, o.SnapshotPath)
	setIf(&c.Snapshot.Cron, o.SnapshotCron)
	if o.HTTPTimeout > 0 {
		c.HTTPTimeout = o.HTTPTimeout
	}

	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path and applies
// environment overrides.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
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
			return cfg, cfg.ApplyEnv()
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
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

	tmp, err := os.CreateTemp(dir, ".schedwidget-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
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

// LoadLocation resolves c.Timezone, falling back to time.Local when it is
// empty or unknown.
func (c *Config) LoadLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// Save writes c to path. See the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
