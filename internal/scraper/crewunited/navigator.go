package crewunited

import (
	"context"
	"strings"
	"time"

	"github.com/Wilfredoo/crew-scraper/internal/browser"

	"github.com/rs/zerolog/log"
)

// openJobsPage goes through the homepage and the "Jobs" menu entry like a
// visitor would. If the menu cannot be used it falls back to the jobs URL.
func (s *Scraper) openJobsPage(ctx context.Context, session browser.Session) error {
	cfg := s.cfg
	log.Info().Str("url", cfg.BaseURL).Msg("🏠 Opening crew-united homepage...")
	if err := session.Navigate(ctx, cfg.BaseURL, ""); err != nil {
		log.Warn().Err(err).Msg("⚠️ Homepage failed to load")
		return s.openJobsURL(ctx, session)
	}
	if err := pause(ctx, cfg.Browser.SettleDelay); err != nil {
		return err
	}

	links, err := session.FindAll(cfg.Selectors.JobsLink)
	if err != nil || len(links) == 0 {
		log.Warn().Err(err).Str("selector", cfg.Selectors.JobsLink).Msg("⚠️ Jobs link not found")
		return s.openJobsURL(ctx, session)
	}

	log.Info().Msg("🖱️ Clicking Jobs link...")
	if err := session.Click(ctx, links[0]); err != nil {
		log.Warn().Err(err).Msg("⚠️ Jobs link click failed")
		return s.openJobsURL(ctx, session)
	}
	session.Invalidate()

	if err := pause(ctx, cfg.Browser.PageLoadDelay); err != nil {
		return err
	}

	if err := session.WaitUntil(ctx, func() (bool, error) {
		markers, err := session.FindAll(cfg.Selectors.PageMarker)
		return len(markers) > 0, err
	}, cfg.Browser.WaitTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("⚠️ No listings visible after opening jobs page")
	}

	if !strings.Contains(session.URL(), "/jobs") {
		log.Warn().Str("url", session.URL()).Msg("⚠️ Not on a jobs page")
	} else {
		log.Info().Str("url", session.URL()).Msg("✅ On jobs page")
	}
	return nil
}

func (s *Scraper) openJobsURL(ctx context.Context, session browser.Session) error {
	log.Info().Str("url", s.cfg.JobsURL).Msg("↪️ Opening jobs page directly")
	return session.Navigate(ctx, s.cfg.JobsURL, s.cfg.Selectors.PageMarker)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
