package crewunited

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/scraper"

	"github.com/rs/zerolog/log"
)

// Paginator walks the listing pages, classifying each one, until there is no
// next page, the page cap is hit or a page fails to load.
type Paginator struct {
	session     browser.Session
	classifier  *Classifier
	nextPage    string
	marker      string
	waitTimeout time.Duration
	humanize    bool
	recorder    *browser.Recorder
}

// ScrapeAllPages returns every non-empty record collected. Stopping early
// keeps what was gathered so far.
func (p *Paginator) ScrapeAllPages(ctx context.Context, maxPages int) ([]scraper.JobRecord, scraper.PageStats) {
	if maxPages < 1 {
		maxPages = 1
	}

	var (
		jobs  []scraper.JobRecord
		stats scraper.PageStats
	)

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			stats.StopReason = scraper.StopCancelled
			break
		}

		log.Info().Int("page", page).Msgf("📄 Scraping page %d/%d", page, maxPages)
		targets, err := p.classifier.FindTargetElements(p.session)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("⚠️ Could not classify page")
		}

		found := 0
		for _, el := range targets {
			rec := p.classifier.Extract(el)
			if rec.IsEmpty() {
				log.Debug().Int("page", page).Msg("skipping listing without text")
				continue
			}
			jobs = append(jobs, rec)
			found++
		}
		stats.Pages = page
		log.Info().Int("page", page).Int("matches", found).Int("total", len(jobs)).Msg("✅ Page done")

		if p.recorder != nil {
			if err := p.recorder.Record(p.session); err != nil {
				log.Warn().Err(err).Msg("⚠️ Failed to record page")
			}
		}

		if page >= maxPages {
			log.Info().Int("max_pages", maxPages).Msg("🛑 Page limit reached")
			stats.StopReason = scraper.StopMaxPages
			break
		}

		next, ok := p.findNext()
		if !ok {
			log.Info().Msg("🏁 No more pages")
			stats.StopReason = scraper.StopNoNextPage
			break
		}

		//something from this page that must disappear once the next one loads
		anchor := next
		if len(targets) > 0 {
			anchor = targets[0]
		}

		if err := p.advance(ctx, next, anchor); err != nil {
			switch {
			case ctx.Err() != nil:
				stats.StopReason = scraper.StopCancelled
			case errors.Is(err, browser.ErrTimeout):
				log.Warn().Err(err).Int("page", page+1).Msg("⚠️ Next page did not load, keeping partial results")
				p.screenshot(fmt.Sprintf("crewunited-page-%d-timeout", page+1), "🚨 crew-united: next page never loaded")
				stats.StopReason = scraper.StopPageTimeout
			default:
				log.Warn().Err(err).Msg("⚠️ Could not open next page")
				stats.StopReason = scraper.StopClickFailed
			}
			break
		}

		if p.humanize {
			browser.RandomDelay(1000, 3000)
		}
	}

	if len(jobs) == 0 {
		log.Warn().Int("pages", stats.Pages).Msg("⚠️ No matching jobs found")
	}
	return jobs, stats
}

func (p *Paginator) advance(ctx context.Context, next, anchor browser.Element) error {
	if err := p.session.Click(ctx, next); err != nil {
		return fmt.Errorf("click next page: %w", err)
	}
	p.session.Invalidate()

	return p.session.WaitUntil(ctx, func() (bool, error) {
		if !anchor.Detached() {
			return false, nil
		}
		markers, err := p.session.FindAll(p.marker)
		if err != nil {
			return false, err
		}
		return len(markers) > 0, nil
	}, p.waitTimeout)
}

// findNext returns the next-page control when it exists and is usable.
func (p *Paginator) findNext() (browser.Element, bool) {
	candidates, err := p.session.FindAll(p.nextPage)
	if err != nil {
		log.Debug().Err(err).Msg("next page lookup failed")
		return nil, false
	}
	if len(candidates) == 0 {
		return nil, false
	}
	next := candidates[0]

	enabled, err := next.IsEnabled()
	if err != nil || !enabled {
		return nil, false
	}
	if class, _, err := next.Attribute("class"); err == nil && hasClass(class, "disabled") {
		return nil, false
	}
	if aria, _, err := next.Attribute("aria-disabled"); err == nil && strings.EqualFold(aria, "true") {
		return nil, false
	}
	return next, true
}

func (p *Paginator) screenshot(name, message string) {
	if shooter, ok := p.session.(browser.Screenshotter); ok {
		if err := shooter.Screenshot(name, message); err != nil {
			log.Debug().Err(err).Msg("screenshot failed")
		}
	}
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}
