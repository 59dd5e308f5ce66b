package crewunited

import (
	"context"
	"testing"

	"github.com/Wilfredoo/crew-scraper/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job(title, email string) string {
	return listing(target, "<h3>"+title+"</h3><a href=\"mailto:"+email+"\">mail</a>")
}

func threePages() map[string]string {
	return map[string]string{
		testJobsURL:             page("/en/jobs/?page=2", job("Short one", "one@example.com"), listing("Camera", "<h3>Skip</h3>")),
		testJobsURL + "?page=2": page("/en/jobs/?page=3", job("Short two", "two@example.com")),
		testJobsURL + "?page=3": page("", job("Short three", "three@example.com")),
	}
}

func scrapeFrom(t *testing.T, pages map[string]string, maxPages int) ([]scraper.JobRecord, scraper.PageStats) {
	t.Helper()
	s := newSession(t, pages)
	require.NoError(t, s.Navigate(testContext(t), testJobsURL, ""))
	return New(testConfig()).Paginator(s).ScrapeAllPages(testContext(t), maxPages)
}

func emails(jobs []scraper.JobRecord) []string {
	var out []string
	for _, j := range jobs {
		out = append(out, j.Email)
	}
	return out
}

func TestScrapeAllPages_UntilNoNextPage(t *testing.T) {
	jobs, stats := scrapeFrom(t, threePages(), 5)

	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, scraper.StopNoNextPage, stats.StopReason)
	assert.Equal(t, []string{"one@example.com", "two@example.com", "three@example.com"}, emails(jobs))
}

func TestScrapeAllPages_StopsAtMaxPages(t *testing.T) {
	jobs, stats := scrapeFrom(t, threePages(), 2)

	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, scraper.StopMaxPages, stats.StopReason)
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, emails(jobs))
}

func TestScrapeAllPages_DisabledNext(t *testing.T) {
	tests := []struct {
		name string
		nav  string
	}{
		{name: "disabled class", nav: `<a class="btn icon icon-chevron-right disabled" href="/en/jobs/?page=2">Next</a>`},
		{name: "aria-disabled", nav: `<a class="btn icon icon-chevron-right" aria-disabled="true" href="/en/jobs/?page=2">Next</a>`},
		{name: "disabled attribute", nav: `<button class="btn icon icon-chevron-right" disabled>Next</button>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := threePages()
			pages[testJobsURL] = `<html><body><ul>` + job("Short one", "one@example.com") + `</ul>` + tt.nav + `</body></html>`

			jobs, stats := scrapeFrom(t, pages, 5)
			assert.Equal(t, 1, stats.Pages)
			assert.Equal(t, scraper.StopNoNextPage, stats.StopReason)
			assert.Len(t, jobs, 1)
		})
	}
}

func TestScrapeAllPages_TimeoutKeepsPartialResults(t *testing.T) {
	pages := threePages()
	//second page loads but never shows a listing
	pages[testJobsURL+"?page=2"] = `<html><body><p>Something went wrong</p></body></html>`

	jobs, stats := scrapeFrom(t, pages, 5)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, scraper.StopPageTimeout, stats.StopReason)
	assert.Equal(t, []string{"one@example.com"}, emails(jobs))
}

func TestScrapeAllPages_DeadNextControl(t *testing.T) {
	pages := threePages()
	pages[testJobsURL] = page("#", job("Short one", "one@example.com"))

	jobs, stats := scrapeFrom(t, pages, 5)
	assert.Equal(t, scraper.StopPageTimeout, stats.StopReason)
	assert.Len(t, jobs, 1)
}

func TestScrapeAllPages_NoMatchesIsNotAnError(t *testing.T) {
	pages := map[string]string{testJobsURL: page("", listing("Camera", "<h3>DoP</h3>"))}

	jobs, stats := scrapeFrom(t, pages, 5)
	assert.Empty(t, jobs)
	assert.Equal(t, 1, stats.Pages)
}

func TestScrapeAllPages_Cancelled(t *testing.T) {
	s := newSession(t, threePages())
	require.NoError(t, s.Navigate(testContext(t), testJobsURL, ""))

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	jobs, stats := New(testConfig()).Paginator(s).ScrapeAllPages(ctx, 5)
	assert.Empty(t, jobs)
	assert.Equal(t, scraper.StopCancelled, stats.StopReason)
}
