package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// APIConfig points at the remote plant collection.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// AuthConfig holds the identity provider settings.
type AuthConfig struct {
	// Endpoint is the Identity Toolkit REST root,
	// e.g. https://identitytoolkit.googleapis.com/v1.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
}

// RecentConfig controls the recently viewed plants cache.
type RecentConfig struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	DefaultSort     string `mapstructure:"default_sort" yaml:"default_sort"`
}

// SMTPConfig describes the outgoing mail server. The password lives in the
// keyring under credential.KeySMTPPassword.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	// TLS is "implicit" (port 465 style) or "starttls".
	TLS string `mapstructure:"tls" yaml:"tls"`
}

// ReminderConfig controls the daily watering check and email reminders.
type ReminderConfig struct {
	Enabled       bool       `mapstructure:"enabled" yaml:"enabled"`
	Email         bool       `mapstructure:"email" yaml:"email"`
	Schedule      string     `mapstructure:"schedule" yaml:"schedule"`
	Timezone      string     `mapstructure:"timezone" yaml:"timezone"`
	From          string     `mapstructure:"from" yaml:"from"`
	RatePerMinute int        `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
	SMTP          SMTPConfig `mapstructure:"smtp" yaml:"smtp"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File receives JSON log lines. Empty means
	// ~/.config/plantcare/plantcare.log.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API       APIConfig      `mapstructure:"api" yaml:"api"`
	Auth      AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Recent    RecentConfig   `mapstructure:"recent" yaml:"recent"`
	Display   DisplayConfig  `mapstructure:"display" yaml:"display"`
	Reminders ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/plantcare.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "plantcare")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/plantcare/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultDBPath returns the location of the local SQLite database.
func DefaultDBPath() string {
	return filepath.Join(ConfigDir(), "plantcare.db")
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:3000",
			TimeoutSec: 15,
		},
		Auth: AuthConfig{
			Endpoint: "https://identitytoolkit.googleapis.com/v1",
		},
		Recent: RecentConfig{Capacity: 6},
		Display: DisplayConfig{
			Theme:           "auto",
			PollIntervalSec: 120,
			DefaultSort:     string(SortByNextWatering),
		},
		Reminders: ReminderConfig{
			Enabled:       true,
			Schedule:      "0 8 * * *",
			Timezone:      "Local",
			RatePerMinute: 30,
			SMTP:          SMTPConfig{Port: 587, TLS: "starttls"},
		},
		Log: LogConfig{Level: "info"},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PLANTCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("auth.endpoint", d.Auth.Endpoint)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("recent.capacity", d.Recent.Capacity)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.poll_interval_sec", d.Display.PollIntervalSec)
	v.SetDefault("display.default_sort", d.Display.DefaultSort)
	v.SetDefault("reminders.enabled", d.Reminders.Enabled)
	v.SetDefault("reminders.email", d.Reminders.Email)
	v.SetDefault("reminders.schedule", d.Reminders.Schedule)
	v.SetDefault("reminders.timezone", d.Reminders.Timezone)
	v.SetDefault("reminders.from", "")
	v.SetDefault("reminders.rate_per_minute", d.Reminders.RatePerMinute)
	v.SetDefault("reminders.smtp.host", "")
	v.SetDefault("reminders.smtp.port", d.Reminders.SMTP.Port)
	v.SetDefault("reminders.smtp.username", "")
	v.SetDefault("reminders.smtp.tls", d.Reminders.SMTP.TLS)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults, still subject to PLANTCARE_*
// environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return decode(v, path)
}

func decode(v *viper.Viper, path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyFloors()
	return cfg, nil
}

func (c *AppConfig) applyFloors() {
	if c.Recent.Capacity < 1 {
		c.Recent.Capacity = 6
	}
	if c.Display.PollIntervalSec < 10 {
		c.Display.PollIntervalSec = 10
	}
	if c.API.TimeoutSec < 1 {
		c.API.TimeoutSec = 15
	}
	if c.Reminders.RatePerMinute < 1 {
		c.Reminders.RatePerMinute = 1
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("auth", cfg.Auth)
	v.Set("recent", cfg.Recent)
	v.Set("display", cfg.Display)
	v.Set("reminders", cfg.Reminders)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// WatchConfig calls onChange with the reloaded configuration each time the
// file at path is written. Reload errors are passed to onError and the
// previous configuration stays in effect.
func WatchConfig(path string, onChange func(*AppConfig), onError func(error)) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && onError != nil {
		onError(fmt.Errorf("reading config %s: %w", path, err))
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v, path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
