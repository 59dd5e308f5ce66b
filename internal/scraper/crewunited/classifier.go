package crewunited

import (
	"fmt"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/filter"
	"github.com/Wilfredoo/crew-scraper/internal/scraper"

	"github.com/rs/zerolog/log"
)

// Classifier picks the listings of the target categories off a page and
// turns them into records.
type Classifier struct {
	matcher    *filter.CategoryMatcher
	breadcrumb string
	container  string
	emails     *EmailExtractor
}

func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		matcher:    filter.NewCategoryMatcher(cfg.TargetCategories),
		breadcrumb: cfg.Selectors.Breadcrumb,
		container:  cfg.Selectors.JobContainer,
		emails:     NewEmailExtractor(cfg.Selectors.ObfuscationMarker),
	}
}

// FindTargetElements returns the job container of every breadcrumb naming a
// target category. Unreadable breadcrumbs are skipped.
func (c *Classifier) FindTargetElements(s browser.Session) ([]browser.Element, error) {
	crumbs, err := s.FindAll(c.breadcrumb)
	if err != nil {
		return nil, fmt.Errorf("find breadcrumbs: %w", err)
	}

	var targets []browser.Element
	for i, crumb := range crumbs {
		text, err := crumb.Text()
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("breadcrumb unreadable")
			continue
		}
		if !c.matcher.Matches(text) {
			continue
		}
		job, err := crumb.Closest(c.container)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("job container lookup failed")
			continue
		}
		if job == nil {
			log.Debug().Int("index", i).Str("breadcrumb", text).Msg("matching breadcrumb outside a job container")
			continue
		}
		targets = append(targets, job)
	}
	log.Debug().Int("breadcrumbs", len(crumbs)).Int("targets", len(targets)).Msg("🔎 Classified page")
	return targets, nil
}

// Extract builds the record of one already classified listing.
func (c *Classifier) Extract(el browser.Element) scraper.JobRecord {
	rec := scraper.JobRecord{MatchedCategory: true}

	raw, err := el.Text()
	if err != nil {
		log.Debug().Err(err).Msg("listing text unreadable")
		return rec
	}
	if raw == "" {
		return rec
	}
	rec.RawText = raw
	rec.Title, _ = filter.PickTitle(raw)
	rec.Email, _ = c.emails.Extract(el, raw)
	return rec
}
