// Package config provides Chrono's YAML-backed configuration.
//
// Configuration is loaded once at startup from ~/.chrono/config.yaml (or a
// path given on the command line), overlaid with environment variables for
// secrets, and injected into the components that need it. Components never
// re-read configuration at call time.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default operation timeouts, in milliseconds to match Playwright's options.
const (
	DefaultNavigationTimeout = 30000.0
	DefaultSelectorTimeout   = 10000.0
	DefaultSlotListTimeout   = 5000.0
)

// Config is the root configuration for the Chrono CLI and engine.
type Config struct {
	Calendar CalendarConfig `yaml:"calendar"`
	Browser  BrowserConfig  `yaml:"browser"`
	LLM      LLMConfig      `yaml:"llm"`
}

// CalendarConfig describes the booking page the engine drives.
type CalendarConfig struct {
	// URL is the event booking page (e.g. a 30-minute meeting link).
	URL string `yaml:"url"`

	// AllowedHosts are glob patterns for hosts the engine may navigate to.
	// When empty, only the host of URL is allowed.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// BrowserConfig controls the headless browser sessions.
type BrowserConfig struct {
	// Headless controls whether Chromium runs without a visible window.
	Headless bool `yaml:"headless"`

	// NavigationTimeout bounds page loads, in milliseconds.
	NavigationTimeout float64 `yaml:"navigation_timeout_ms"`

	// SelectorTimeout bounds waits for required elements, in milliseconds.
	SelectorTimeout float64 `yaml:"selector_timeout_ms"`

	// SlotListTimeout bounds the wait for a day's time-slot list during
	// discovery, in milliseconds. Days that never render slots are skipped.
	SlotListTimeout float64 `yaml:"slot_list_timeout_ms"`
}

// LLMConfig configures the conversation model.
type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults. The calendar URL has
// no default and must be provided.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: DefaultNavigationTimeout,
			SelectorTimeout:   DefaultSelectorTimeout,
			SlotListTimeout:   DefaultSlotListTimeout,
		},
		LLM: LLMConfig{
			Model: "gpt-4o",
		},
	}
}

// DefaultConfigPath returns ~/.chrono/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".chrono", "config.yaml"), nil
}

// Load reads configuration from the given path and overlays environment
// variables. A missing file is not an error when path is empty (the default
// location is optional); an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Optional default file, continue with defaults.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables. Environment values win over file
// values so secrets can stay out of config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("CHRONO_CALENDAR_URL"); v != "" {
		c.Calendar.URL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Calendar.URL == "" {
		return fmt.Errorf("calendar URL is required (set calendar.url or CHRONO_CALENDAR_URL)")
	}

	parsed, err := url.Parse(c.Calendar.URL)
	if err != nil {
		return fmt.Errorf("invalid calendar URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("calendar URL must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("calendar URL has no host")
	}

	if c.Browser.NavigationTimeout <= 0 || c.Browser.SelectorTimeout <= 0 || c.Browser.SlotListTimeout <= 0 {
		return fmt.Errorf("browser timeouts must be positive")
	}

	return nil
}

// EffectiveAllowedHosts returns the configured allowed-host patterns, or the
// calendar URL's host when none are configured.
func (c *Config) EffectiveAllowedHosts() []string {
	if len(c.Calendar.AllowedHosts) > 0 {
		return c.Calendar.AllowedHosts
	}
	parsed, err := url.Parse(c.Calendar.URL)
	if err != nil || parsed.Host == "" {
		return nil
	}
	return []string{parsed.Host}
}
