package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Wilfredoo/crew-scraper/internal/archive"
	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/logging"
	"github.com/Wilfredoo/crew-scraper/internal/mailer"
	"github.com/Wilfredoo/crew-scraper/internal/pipeline"
	"github.com/Wilfredoo/crew-scraper/internal/reporter"
	"github.com/Wilfredoo/crew-scraper/internal/scraper/crewunited"
	"github.com/Wilfredoo/crew-scraper/internal/secrets"
	"github.com/Wilfredoo/crew-scraper/internal/telegram"
)

const runTimeout = 30 * time.Minute

var (
	configPath string
	maxPages   int
	headless   bool
	verbose    bool
	replayDir  string
	dumpDir    string
	sendMail   bool
	keepOpen   time.Duration
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the YAML config")
	f.IntVar(&maxPages, "max-pages", 0, "Stop after this many listing pages (overrides config)")
	f.BoolVar(&headless, "headless", false, "Run Chromium without a window")
	f.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	f.StringVar(&replayDir, "replay", "", "Scrape pages recorded with --dump-html instead of the live site")
	f.StringVar(&dumpDir, "dump-html", "", "Record every scraped listing page into this directory")
	f.BoolVar(&sendMail, "send", false, "Mail the new addresses after saving them")
	f.DurationVar(&keepOpen, "keep-open", 0, "Keep the browser open this long before closing (overrides config)")
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		cfg.MaxPages = maxPages
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("dump-html") {
		cfg.Output.DumpHTMLDir = dumpDir
	}
	if flags.Changed("keep-open") {
		cfg.Browser.KeepOpen = keepOpen
	}
	if flags.Changed("send") {
		cfg.Mail.SendAfterScrape = sendMail
	}
	return cfg.Validate()
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	logging.Setup(cfg.Verbose)
	runID := logging.WithRunID()
	log.Info().Int("max_pages", cfg.MaxPages).Strs("categories", cfg.TargetCategories).Msg("🔧 Config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	var scraperOpts []crewunited.Option
	var sessions pipeline.SessionFactory
	if replayDir != "" {
		session, start, err := browser.LoadReplay(replayDir)
		if err != nil {
			return err
		}
		log.Info().Str("dir", replayDir).Str("start", start).Msg("📼 Replaying recorded pages")
		scraperOpts = append(scraperOpts, crewunited.WithStartURL(start))
		sessions = func(context.Context) (browser.Session, func() error, error) {
			return session, session.Close, nil
		}
	} else {
		sessions = playwrightSessions(cfg)
	}

	if cfg.Output.DumpHTMLDir != "" {
		rec, err := browser.NewRecorder(cfg.Output.DumpHTMLDir)
		if err != nil {
			return err
		}
		scraperOpts = append(scraperOpts, crewunited.WithRecorder(rec))
	}

	pipelineOpts := []pipeline.Option{pipeline.WithRunID(runID)}
	if cfg.Mail.SendAfterScrape {
		m, err := smtpMailer(cfg)
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, pipeline.WithMailer(m))
	}

	rep := reporter.New(os.Stdout, notifiers(cfg)...)
	rep.RunStarted(fmt.Sprintf("Scraping crew-united (run %s)", runID[:8]))

	p := pipeline.New(cfg, crewunited.New(cfg, scraperOpts...), sessions, archive.NewStore(cfg.Output), rep, pipelineOpts...)
	if _, err := p.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("✨ Done")
	return nil
}

func playwrightSessions(cfg *config.Config) pipeline.SessionFactory {
	return func(ctx context.Context) (browser.Session, func() error, error) {
		pm, err := browser.NewPlaywright(ctx, cfg.Browser)
		if err != nil {
			return nil, nil, err
		}

		var cookies []playwright.OptionalCookie
		if cfg.CookiesPath != "" {
			cookies, err = browser.LoadCookies(cfg.CookiesPath)
			if err != nil {
				log.Warn().Err(err).Msg("⚠️ Could not load cookies. Continuing.")
			} else {
				log.Info().Int("cookies", len(cookies)).Msg("🍪 Loaded cookies")
			}
		}

		session, err := pm.NewSession(cookies, "")
		if err != nil {
			_ = pm.Close()
			return nil, nil, err
		}
		return session, func() error { return pm.CloseAfter(cfg.Browser.KeepOpen) }, nil
	}
}

func smtpMailer(cfg *config.Config) (mailer.Mailer, error) {
	if err := cfg.ValidateMail(); err != nil {
		return nil, err
	}
	password, err := secrets.SMTPPassword(cfg.Mail)
	if err != nil {
		return nil, err
	}
	return mailer.NewSMTPMailer(cfg.Mail, password), nil
}

func notifiers(cfg *config.Config) []reporter.Notifier {
	if !cfg.Telegram.Enabled() {
		return nil
	}
	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Telegram disabled")
		return nil
	}
	log.Info().Msg("🤖 Telegram Bot initialized.")
	return []reporter.Notifier{bot}
}
