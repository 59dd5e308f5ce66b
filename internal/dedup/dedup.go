// Package dedup separates the addresses seen for the first time from the
// ones an earlier run already collected.
package dedup

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"

	"github.com/Wilfredoo/crew-scraper/internal/scraper"
)

// EmailSet holds unique addresses. Order only matters for the slices that
// go in and come out.
type EmailSet = mapset.Set[string]

func NewEmailSet(emails ...string) EmailSet {
	return mapset.NewThreadUnsafeSet(emails...)
}

// UniqueEmails returns the trimmed, non-blank addresses of jobs in the order
// they were first seen.
func UniqueEmails(jobs []scraper.JobRecord) []string {
	seen := NewEmailSet()
	var out []string
	for _, j := range jobs {
		email := strings.TrimSpace(j.Email)
		if email == "" || !seen.Add(email) {
			continue
		}
		out = append(out, email)
	}
	return out
}

// Partition splits current into addresses missing from previous and
// addresses already in it. Both keep the order of current.
func Partition(current []string, previous EmailSet) (fresh, repeated []string) {
	seen := NewEmailSet()
	for _, email := range current {
		email = strings.TrimSpace(email)
		if email == "" || !seen.Add(email) {
			continue
		}
		if previous != nil && previous.Contains(email) {
			repeated = append(repeated, email)
			continue
		}
		fresh = append(fresh, email)
	}
	return fresh, repeated
}

// History finds the output of the most recent earlier run.
type History interface {
	MostRecentOutput() (string, bool, error)
	ReadEmails(path string) ([]string, error)
}

type Filter struct {
	history History
}

func NewFilter(history History) *Filter {
	return &Filter{history: history}
}

// Result carries the counts logged by FilterNew.
type Result struct {
	New      []string
	Repeated []string
	Previous int
	Source   string
}

func (r Result) Total() int { return len(r.New) + len(r.Repeated) }

// FilterNew returns the addresses of current that are not in previous. With
// a nil previous the set is loaded from the most recent output file; no file
// means every address is new.
func (f *Filter) FilterNew(current []string, previous EmailSet) (Result, error) {
	var res Result
	if previous == nil {
		loaded, source, err := f.loadPrevious()
		if err != nil {
			return res, err
		}
		previous, res.Source = loaded, source
	}
	res.Previous = previous.Cardinality()
	res.New, res.Repeated = Partition(current, previous)

	log.Info().
		Int("new", len(res.New)).
		Int("repeated", len(res.Repeated)).
		Int("total", res.Total()).
		Msg("🔁 Compared with previous run")
	return res, nil
}

func (f *Filter) loadPrevious() (EmailSet, string, error) {
	if f.history == nil {
		return NewEmailSet(), "", nil
	}
	path, ok, err := f.history.MostRecentOutput()
	if err != nil {
		return nil, "", fmt.Errorf("find previous output: %w", err)
	}
	if !ok {
		log.Info().Msg("📭 No previous output, every address is new")
		return NewEmailSet(), "", nil
	}
	emails, err := f.history.ReadEmails(path)
	if err != nil {
		return nil, "", fmt.Errorf("read previous output: %w", err)
	}
	log.Info().Str("file", path).Int("emails", len(emails)).Msg("📋 Loaded previous run")
	return NewEmailSet(emails...), path, nil
}
