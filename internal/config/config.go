// Load envs from .env
// Load YAML config
// Override with env vars
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "configs/config.yaml"

// DefaultCategory is the listing category the outreach pipeline targets.
const DefaultCategory = "no budget (actors*actresses and speakers)"

type Config struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	JobsURL string `yaml:"jobs_url" validate:"required,url"`

	//Search criteria
	TargetCategories []string `yaml:"target_categories" validate:"min=1,dive,required"`
	MaxPages         int      `yaml:"max_pages" validate:"gte=1"`

	Browser   BrowserConfig  `yaml:"browser"`
	Selectors Selectors      `yaml:"selectors"`
	Output    OutputConfig   `yaml:"output"`
	Mail      MailConfig     `yaml:"mail"`
	Telegram  TelegramConfig `yaml:"telegram"`

	//Paths
	CookiesPath string `yaml:"cookies_path"`

	Verbose bool `yaml:"verbose"`
}

type BrowserConfig struct {
	Headless      bool          `yaml:"headless"`
	UserAgent     string        `yaml:"user_agent"`
	WaitTimeout   time.Duration `yaml:"wait_timeout" validate:"gt=0"`
	PageLoadDelay time.Duration `yaml:"page_load_delay" validate:"gte=0"`
	SettleDelay   time.Duration `yaml:"settle_delay" validate:"gte=0"`
	KeepOpen      time.Duration `yaml:"keep_open" validate:"gte=0"`
	PollInterval  time.Duration `yaml:"poll_interval" validate:"gt=0"`
	// Humanize enables random pauses and scrolling between page transitions.
	Humanize bool `yaml:"humanize"`
}

type Selectors struct {
	JobsLink          string `yaml:"jobs_link" validate:"required"`
	Breadcrumb        string `yaml:"breadcrumb" validate:"required"`
	JobContainer      string `yaml:"job_container" validate:"required"`
	NextPage          string `yaml:"next_page" validate:"required"`
	PageMarker        string `yaml:"page_marker" validate:"required"`
	ObfuscationMarker string `yaml:"obfuscation_marker" validate:"required"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir" validate:"required"`
	ArchiveDir string `yaml:"archive_dir" validate:"required"`
	Prefix     string `yaml:"prefix" validate:"required,excludesall=/\\"`
	LockFile   string `yaml:"lock_file"`
	// DumpHTMLDir records every visited listing page when set.
	DumpHTMLDir string `yaml:"dump_html_dir"`
}

type MailConfig struct {
	Host            string        `yaml:"host" validate:"required,hostname|ip"`
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	From            string        `yaml:"from" validate:"omitempty,email"`
	Subject         string        `yaml:"subject" validate:"required"`
	Body            string        `yaml:"body" validate:"required"`
	Delay           time.Duration `yaml:"delay" validate:"gte=0"`
	KeyringAccount  string        `yaml:"keyring_account"`
	SendAfterScrape bool          `yaml:"send_after_scrape"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Enabled reports whether run summaries should go to Telegram.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// Sender returns the envelope/From address used for outgoing mail.
func (m MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

// Addr is host:port for the SMTP submission server.
func (m MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Default returns the settings the scraper was tuned with against crew-united.com.
func Default() *Config {
	return &Config{
		BaseURL:          "https://www.crew-united.com/en/",
		JobsURL:          "https://www.crew-united.com/en/jobs/",
		TargetCategories: []string{DefaultCategory},
		MaxPages:         5,
		Browser: BrowserConfig{
			Headless:      false,
			UserAgent:     "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WaitTimeout:   15 * time.Second,
			PageLoadDelay: 10 * time.Second,
			SettleDelay:   2 * time.Second,
			KeepOpen:      60 * time.Second,
			PollInterval:  250 * time.Millisecond,
			Humanize:      true,
		},
		Selectors: Selectors{
			JobsLink:          "a.jobs",
			Breadcrumb:        "span.cu-ui-common-breadcrumb-part",
			JobContainer:      "li",
			NextPage:          "a.btn.icon.icon-chevron-right",
			PageMarker:        "span.cu-ui-common-breadcrumb-part",
			ObfuscationMarker: "putTogether",
		},
		Output: OutputConfig{
			Dir:        ".",
			ArchiveDir: "archived_scrapes",
			Prefix:     "emails",
			LockFile:   ".crew-scraper.lock",
		},
		Mail: MailConfig{
			Host:    "smtp.zoho.eu",
			Port:    587,
			Subject: "Actor available for your production",
			Body:    "Hi,\n\nMaybe I could be a good fit for your film.\n\nCheers",
			Delay:   2 * time.Second,
		},
		CookiesPath: "",
		Verbose:     true,
	}
}

// Load reads .env, the YAML file at path (DefaultPath when empty) and the
// environment, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		log.Warn().Str("path", path).Msg("⚠️ Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCRAPER_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPER_HEADLESS: %w", err)
		}
		c.Browser.Headless = b
	}

	if v := os.Getenv("SCRAPER_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPER_VERBOSE: %w", err)
		}
		c.Verbose = b
	}

	if v := os.Getenv("SCRAPER_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRAPER_MAX_PAGES: %w", err)
		}
		c.MaxPages = n
	}

	//SMTP credentials, the ZOHO_* names are kept for existing .env files
	if v := firstEnv("SMTP_USERNAME", "ZOHO_EMAIL"); v != "" {
		c.Mail.Username = v
	}
	if v := firstEnv("SMTP_PASSWORD", "ZOHO_APP_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		c.Mail.From = v
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.Token = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateMail checks the fields only needed for sending mail.
func (c *Config) ValidateMail() error {
	if c.Mail.Username == "" {
		return errors.New("SMTP username is required (mail.username or SMTP_USERNAME)")
	}
	if err := validator.New().Var(c.Mail.Sender(), "required,email"); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", c.Mail.Sender(), err)
	}
	return nil
}
