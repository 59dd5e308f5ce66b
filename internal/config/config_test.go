package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultCategory}, cfg.TargetCategories)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, 15*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, "smtp.zoho.eu:587", cfg.Mail.Addr())
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
max_pages: 2
target_categories:
  - "low budget (actors*actresses and speakers)"
  - "no budget (actors*actresses and speakers)"
browser:
  headless: true
  wait_timeout: 3s
mail:
  delay: 500ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxPages)
	assert.Len(t, cfg.TargetCategories, 2)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 3*time.Second, cfg.Browser.WaitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Mail.Delay)
	//untouched keys keep their defaults
	assert.Equal(t, "a.jobs", cfg.Selectors.JobsLink)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "browser:\n  headless: false\nverbose: true\n")
	t.Setenv("SCRAPER_HEADLESS", "true")
	t.Setenv("SCRAPER_VERBOSE", "false")
	t.Setenv("ZOHO_EMAIL", "me@example.com")
	t.Setenv("ZOHO_APP_PASSWORD", "app-secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "me@example.com", cfg.Mail.Username)
	assert.Equal(t, "me@example.com", cfg.Mail.Sender())
	assert.Equal(t, "app-secret", cfg.Mail.Password)
	assert.True(t, cfg.Telegram.Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "zero pages", yaml: "max_pages: 0\n"},
		{name: "no categories", yaml: "target_categories: []\n"},
		{name: "blank category", yaml: "target_categories: [\"\"]\n"},
		{name: "prefix with slash", yaml: "output:\n  prefix: a/b\n"},
		{name: "bad bool env", env: map[string]string{"SCRAPER_HEADLESS": "maybe"}},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidateMail(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateMail(), "username is required")

	cfg.Mail.Username = "not-an-address"
	assert.Error(t, cfg.ValidateMail())

	cfg.Mail.From = "casting@example.com"
	assert.NoError(t, cfg.ValidateMail())
}
