package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CHRONO_CALENDAR_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, DefaultNavigationTimeout, cfg.Browser.NavigationTimeout)
	assert.Equal(t, DefaultSelectorTimeout, cfg.Browser.SelectorTimeout)
	assert.Equal(t, DefaultSlotListTimeout, cfg.Browser.SlotListTimeout)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Empty(t, cfg.Calendar.URL, "the calendar URL has no default")
}

func TestLoadExplicitFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calendar:
  url: https://calendar.example.com/team/30min
  allowed_hosts:
    - "*.example.com"
browser:
  headless: false
  selector_timeout_ms: 2500
llm:
  model: gpt-4o-mini
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://calendar.example.com/team/30min", cfg.Calendar.URL)
	assert.Equal(t, []string{"*.example.com"}, cfg.Calendar.AllowedHosts)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2500.0, cfg.Browser.SelectorTimeout)
	assert.Equal(t, DefaultNavigationTimeout, cfg.Browser.NavigationTimeout, "unset values keep defaults")
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNavigationTimeout, cfg.Browser.NavigationTimeout)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar: [not: valid"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHRONO_CALENDAR_URL", "https://override.example.com/x")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "https://proxy.example.com/v1")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calendar:
  url: https://calendar.example.com/team/30min
llm:
  api_key: from-file
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com/x", cfg.Calendar.URL)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://proxy.example.com/v1", cfg.LLM.BaseURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Calendar.URL = "https://calendar.example.com/team/30min"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing URL", func(c *Config) { c.Calendar.URL = "" }},
		{"bad scheme", func(c *Config) { c.Calendar.URL = "ftp://calendar.example.com" }},
		{"no host", func(c *Config) { c.Calendar.URL = "https://" }},
		{"zero timeout", func(c *Config) { c.Browser.SelectorTimeout = 0 }},
		{"negative timeout", func(c *Config) { c.Browser.NavigationTimeout = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEffectiveAllowedHosts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Calendar.URL = "https://calendar.example.com/team/30min"

	assert.Equal(t, []string{"calendar.example.com"}, cfg.EffectiveAllowedHosts(),
		"defaults to the calendar host")

	cfg.Calendar.AllowedHosts = []string{"*.example.com", "cdn.example.net"}
	assert.Equal(t, []string{"*.example.com", "cdn.example.net"}, cfg.EffectiveAllowedHosts())

	empty := DefaultConfig()
	assert.Nil(t, empty.EffectiveAllowedHosts())
}
