// Package config handles configuration loading and validation for tempo.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CalendarRoute maps a friendly calendar name to a remote calendar ID.
type CalendarRoute struct {
	Name string `yaml:"name"` // e.g. "personal", "school", "task"
	ID   string `yaml:"id"`   // remote calendar identifier
}

// ModelConfig holds settings for the chat-completions endpoint backing the
// classifier, advisor, and state controller.
type ModelConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Name           string `yaml:"name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config holds the application configuration.
type Config struct {
	Timezone      string          `yaml:"timezone"`
	Calendars     []CalendarRoute `yaml:"calendars"`
	TaskCalendar  string          `yaml:"task_calendar"`  // route name new task events are written to
	HistoryMonths int             `yaml:"history_months"` // months of archive fed to the advisor
	Model         ModelConfig     `yaml:"model"`
	DataDir       string          `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timezone:      "Local",
		TaskCalendar:  "task",
		HistoryMonths: 3,
		Model: ModelConfig{
			BaseURL:        "https://api.openai.com/v1",
			Name:           "gpt-4o",
			TimeoutSeconds: 60,
		},
	}
}

// Load reads configuration from configPath, falling back to defaults when
// the file does not exist.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = defaults.Timezone
	}
	if c.TaskCalendar == "" {
		c.TaskCalendar = defaults.TaskCalendar
	}
	if c.HistoryMonths == 0 {
		c.HistoryMonths = defaults.HistoryMonths
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = defaults.Model.BaseURL
	}
	if c.Model.Name == "" {
		c.Model.Name = defaults.Model.Name
	}
	if c.Model.TimeoutSeconds == 0 {
		c.Model.TimeoutSeconds = defaults.Model.TimeoutSeconds
	}
	if c.Model.APIKey == "" {
		c.Model.APIKey = os.Getenv("TEMPO_API_KEY")
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}

	seen := map[string]bool{}
	for _, route := range c.Calendars {
		if route.Name == "" || route.ID == "" {
			return fmt.Errorf("calendar route needs both name and id (got name=%q id=%q)", route.Name, route.ID)
		}
		if seen[route.Name] {
			return fmt.Errorf("duplicate calendar route %q", route.Name)
		}
		seen[route.Name] = true
	}

	if len(c.Calendars) > 0 {
		if _, ok := c.CalendarID(c.TaskCalendar); !ok {
			return fmt.Errorf("task_calendar %q does not name a configured calendar route", c.TaskCalendar)
		}
	}

	if c.Model.TimeoutSeconds < 0 {
		return fmt.Errorf("model.timeout_seconds must be >= 0")
	}

	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ModelTimeout returns the per-call collaborator timeout.
func (c *Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// CalendarID resolves a route name to its remote calendar ID.
func (c *Config) CalendarID(name string) (string, bool) {
	for _, route := range c.Calendars {
		if route.Name == name {
			return route.ID, true
		}
	}
	return "", false
}
