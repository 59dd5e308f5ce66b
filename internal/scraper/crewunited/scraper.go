package crewunited

import (
	"context"
	"fmt"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/scraper"

	"github.com/rs/zerolog/log"
)

type Scraper struct {
	cfg        *config.Config
	classifier *Classifier
	recorder   *browser.Recorder
	startURL   string
}

type Option func(*Scraper)

// WithRecorder dumps every scraped listing page.
func WithRecorder(r *browser.Recorder) Option {
	return func(s *Scraper) { s.recorder = r }
}

// WithStartURL skips the homepage and opens url directly, as replays do.
func WithStartURL(url string) Option {
	return func(s *Scraper) { s.startURL = url }
}

func New(cfg *config.Config, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) Name() string {
	return "crew-united"
}

func (s *Scraper) Paginator(session browser.Session) *Paginator {
	return &Paginator{
		session:     session,
		classifier:  s.classifier,
		nextPage:    s.cfg.Selectors.NextPage,
		marker:      s.cfg.Selectors.PageMarker,
		waitTimeout: s.cfg.Browser.WaitTimeout,
		humanize:    s.cfg.Browser.Humanize,
		recorder:    s.recorder,
	}
}

func (s *Scraper) Scrape(ctx context.Context, session browser.Session) ([]scraper.JobRecord, scraper.PageStats, error) {
	log.Info().Strs("categories", s.cfg.TargetCategories).Msg("📋 Searching crew-united...")

	var err error
	if s.startURL != "" {
		err = session.Navigate(ctx, s.startURL, s.cfg.Selectors.PageMarker)
	} else {
		err = s.openJobsPage(ctx, session)
	}
	if err != nil {
		return nil, scraper.PageStats{StopReason: scraper.StopNavigateFailed}, fmt.Errorf("open jobs page: %w", err)
	}

	jobs, stats := s.Paginator(session).ScrapeAllPages(ctx, s.cfg.MaxPages)
	log.Info().Int("jobs", len(jobs)).Int("pages", stats.Pages).Str("stop", string(stats.StopReason)).Msg("📊 Scrape finished")
	return jobs, stats, nil
}
