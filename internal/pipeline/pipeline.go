// Package pipeline runs one scrape end to end: lock, archive, scrape,
// compare with the previous run, save, report and optionally mail.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Wilfredoo/crew-scraper/internal/archive"
	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"
	"github.com/Wilfredoo/crew-scraper/internal/dedup"
	"github.com/Wilfredoo/crew-scraper/internal/mailer"
	"github.com/Wilfredoo/crew-scraper/internal/reporter"
	"github.com/Wilfredoo/crew-scraper/internal/scraper"
)

// SessionFactory opens the browser session for a run. The returned func
// tears it down.
type SessionFactory func(ctx context.Context) (browser.Session, func() error, error)

type Pipeline struct {
	cfg      *config.Config
	source   scraper.Scraper
	sessions SessionFactory
	store    *archive.Store
	reporter *reporter.Reporter
	mailer   mailer.Mailer
	runID    string
}

type Option func(*Pipeline)

// WithMailer mails the new addresses once they are saved.
func WithMailer(m mailer.Mailer) Option {
	return func(p *Pipeline) { p.mailer = m }
}

func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

func New(cfg *config.Config, source scraper.Scraper, sessions SessionFactory, store *archive.Store, rep *reporter.Reporter, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		source:   source,
		sessions: sessions,
		store:    store,
		reporter: rep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) lockPath() string {
	lock := p.cfg.Output.LockFile
	if lock == "" || filepath.IsAbs(lock) {
		return lock
	}
	return filepath.Join(p.cfg.Output.Dir, lock)
}

// Run executes the pipeline once. Page and extraction problems only shorten
// the run; an error means the run could not complete at all.
func (p *Pipeline) Run(ctx context.Context) (summary scraper.RunSummary, err error) {
	started := time.Now()
	summary = scraper.RunSummary{RunID: p.runID, Source: p.source.Name(), StartedAt: started}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("💥 Run crashed")
			err = fmt.Errorf("run panicked: %v", r)
		}
		if err != nil {
			p.reporter.RunFailed(err)
		}
	}()

	unlock, err := archive.AcquireLock(p.lockPath())
	if err != nil {
		return summary, err
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			log.Warn().Err(uerr).Msg("⚠️ Failed to release run lock")
		}
	}()

	p.store.ArchiveExistingOutputs()

	jobs, stats, err := p.scrape(ctx)
	if err != nil {
		return summary, err
	}
	summary.Pages, summary.StopReason = stats.Pages, stats.StopReason
	summary.JobsFound = len(jobs)

	p.reporter.DisplayJobs(jobs, p.cfg.TargetCategories)

	current := dedup.UniqueEmails(jobs)
	summary.UniqueEmails = len(current)
	log.Info().Int("emails", len(current)).Msg("🔍 Unique emails in current scrape")

	res, err := dedup.NewFilter(p.store).FilterNew(current, nil)
	if err != nil {
		return summary, err
	}
	summary.NewEmails, summary.Repeated = res.New, len(res.Repeated)

	path, saved := p.store.SaveNewEmails(res.New, len(res.Repeated))
	summary.OutputFile = path

	switch {
	case p.mailer == nil || len(res.New) == 0:
	case !saved:
		log.Warn().Msg("⚠️ New emails were not saved, skipping mail so they are not sent twice")
	default:
		batch := mailer.NewSender(p.mailer, p.cfg.Mail).SendAll(ctx, res.New)
		summary.Mail = &scraper.MailStats{Sent: batch.Sent, Failed: batch.Failed}
	}

	summary.Duration = time.Since(started)
	p.reporter.RunFinished(summary)
	return summary, nil
}

// scrape owns the session lifetime. Navigation failures end the scrape with
// no jobs instead of failing the run.
func (p *Pipeline) scrape(ctx context.Context) (jobs []scraper.JobRecord, stats scraper.PageStats, err error) {
	session, teardown, err := p.sessions(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if terr := teardown(); terr != nil {
			log.Warn().Err(terr).Msg("⚠️ Browser teardown failed")
		}
	}()

	log.Info().Str("source", p.source.Name()).Msg("▶️ Starting scraper")
	jobs, stats, err = p.source.Scrape(ctx, session)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, stats, err
		}
		log.Warn().Err(err).Msg("⚠️ Scrape ended early")
		return nil, stats, nil
	}
	return jobs, stats, nil
}
