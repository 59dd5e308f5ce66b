// Types shared by the listing scrapers and everything downstream of them.

package scraper

import (
	"context"
	"time"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
)

// JobRecord is one listing that passed the category filter.
// Empty Title or Email means the field could not be determined.
type JobRecord struct {
	Title           string
	Email           string
	RawText         string
	MatchedCategory bool
}

// HasTitle reports whether a title line was picked for the listing.
func (j JobRecord) HasTitle() bool { return j.Title != "" }

// HasEmail reports whether a contact address was found.
func (j JobRecord) HasEmail() bool { return j.Email != "" }

// IsEmpty reports a listing without visible text. Such records are counted
// but never reported or mailed.
func (j JobRecord) IsEmpty() bool { return j.RawText == "" }

// StopReason says why pagination ended. None of them is an error.
type StopReason string

const (
	StopNoNextPage     StopReason = "no_next_page"
	StopMaxPages       StopReason = "max_pages"
	StopPageTimeout    StopReason = "page_timeout"
	StopClickFailed    StopReason = "click_failed"
	StopCancelled      StopReason = "cancelled"
	StopNavigateFailed StopReason = "navigation_failed"
)

type PageStats struct {
	Pages      int
	StopReason StopReason
}

// Scraper defines the interface that all listing scrapers implement
type Scraper interface {
	Scrape(ctx context.Context, session browser.Session) ([]JobRecord, PageStats, error)

	//Name is the site name, used in logs and notifications
	Name() string
}

// RunSummary is what a finished run reports to the console and Telegram.
type RunSummary struct {
	RunID        string
	Source       string
	StartedAt    time.Time
	Duration     time.Duration
	Pages        int
	StopReason   StopReason
	JobsFound    int
	UniqueEmails int
	NewEmails    []string
	Repeated     int
	OutputFile   string
	Mail         *MailStats
}

// MailStats is filled when the run also sent outreach mail.
type MailStats struct {
	Sent   int
	Failed []string
}
