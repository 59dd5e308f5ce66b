package crewunited

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Wilfredoo/crew-scraper/internal/browser"
	"github.com/Wilfredoo/crew-scraper/internal/config"

	"github.com/stretchr/testify/require"
)

const (
	testBaseURL = "https://www.crew-united.com/en/"
	testJobsURL = "https://www.crew-united.com/en/jobs/"
	target      = "no budget (actors*actresses and speakers)"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.BaseURL = testBaseURL
	cfg.JobsURL = testJobsURL
	cfg.Browser.SettleDelay = 0
	cfg.Browser.PageLoadDelay = 0
	cfg.Browser.WaitTimeout = 50 * time.Millisecond
	cfg.Browser.PollInterval = time.Millisecond
	cfg.Browser.Humanize = false
	return cfg
}

func listing(category, body string) string {
	return fmt.Sprintf(`<li class="job">%s<div class="path"><span class="cu-ui-common-breadcrumb-part">%s</span></div></li>`, body, category)
}

// page renders a listing page. next is the href of the next control; "" omits
// the control entirely.
func page(next string, items ...string) string {
	nav := ""
	if next != "" {
		nav = fmt.Sprintf(`<a class="btn icon icon-chevron-right" href="%s">Next</a>`, next)
	}
	return fmt.Sprintf(`<html><body><ul class="jobs-list">%s</ul><div class="pager">%s</div></body></html>`,
		strings.Join(items, "\n"), nav)
}

func newSession(t *testing.T, pages map[string]string) *browser.StaticSession {
	t.Helper()
	s := browser.NewStaticSession(pages)
	s.SetPollInterval(time.Millisecond)
	return s
}

// firstElement loads html and returns the first element matching selector.
func firstElement(t *testing.T, html, selector string) browser.Element {
	t.Helper()
	s := newSession(t, map[string]string{testJobsURL: html})
	require.NoError(t, s.Navigate(testContext(t), testJobsURL, ""))
	els, err := s.FindAll(selector)
	require.NoError(t, err)
	require.NotEmpty(t, els)
	return els[0]
}
