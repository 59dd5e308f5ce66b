// Package reporter prints scraped listings and run summaries, and forwards
// summaries to the configured notifiers.
package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Wilfredoo/crew-scraper/internal/scraper"
)

const previewLen = 200

// Notifier receives run outcomes, e.g. the Telegram bot.
type Notifier interface {
	SendRunSummary(s scraper.RunSummary) error
	SendError(err error) error
	SendStatus(message string) error
}

type Reporter struct {
	out       io.Writer
	notifiers []Notifier
}

func New(out io.Writer, notifiers ...Notifier) *Reporter {
	return &Reporter{out: out, notifiers: notifiers}
}

// Preview shortens listing text for the console.
func Preview(raw string) string {
	runes := []rune(raw)
	if len(runes) > previewLen {
		raw = string(runes[:previewLen]) + "..."
	}
	return strings.Join(strings.Fields(raw), " ")
}

// DisplayJobs prints every record. It returns false when there is nothing
// to show.
func (r *Reporter) DisplayJobs(jobs []scraper.JobRecord, categories []string) bool {
	label := strings.ToUpper(strings.Join(categories, " / "))
	rule := strings.Repeat("=", 80)

	if len(jobs) == 0 {
		fmt.Fprintf(r.out, "❌ NO '%s' JOBS FOUND\n", label)
		return false
	}

	fmt.Fprintf(r.out, "🎭 FOUND %d '%s' JOBS\n%s\n", len(jobs), label, rule)
	for i, j := range jobs {
		title, email := j.Title, j.Email
		if title == "" {
			title = "NO TITLE"
		}
		if email == "" {
			email = "NO EMAIL"
		}
		fmt.Fprintf(r.out, "\n🎬 JOB %d:\n", i+1)
		fmt.Fprintf(r.out, "   📝 Title: %s\n", title)
		fmt.Fprintf(r.out, "   📧 Email: %s\n", email)
		if j.RawText != "" {
			fmt.Fprintf(r.out, "   📄 Preview: %s\n", Preview(j.RawText))
		}
		fmt.Fprintln(r.out, strings.Repeat("-", 80))
	}
	return true
}

// RunFinished prints the summary and hands it to every notifier.
func (r *Reporter) RunFinished(s scraper.RunSummary) {
	fmt.Fprintf(r.out, "\n📊 Run summary\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintf(r.out, "Pages scraped:  %d (%s)\n", s.Pages, s.StopReason)
	fmt.Fprintf(r.out, "Jobs found:     %d\n", s.JobsFound)
	fmt.Fprintf(r.out, "Unique emails:  %d\n", s.UniqueEmails)
	fmt.Fprintf(r.out, "New emails:     %d\n", len(s.NewEmails))
	fmt.Fprintf(r.out, "Repeated:       %d\n", s.Repeated)
	if s.OutputFile != "" {
		fmt.Fprintf(r.out, "Saved to:       %s\n", s.OutputFile)
	} else {
		fmt.Fprintln(r.out, "📄 No new email file created")
	}
	if s.Mail != nil {
		fmt.Fprintf(r.out, "Mail sent:      %d, failed: %d\n", s.Mail.Sent, len(s.Mail.Failed))
	}

	for _, n := range r.notifiers {
		if err := n.SendRunSummary(s); err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to send run summary")
		}
	}
}

func (r *Reporter) RunStarted(message string) {
	for _, n := range r.notifiers {
		if err := n.SendStatus(message); err != nil {
			log.Warn().Err(err).Msg("⚠️ Failed to send status")
		}
	}
}

func (r *Reporter) RunFailed(err error) {
	fmt.Fprintf(r.out, "❌ Run failed: %v\n", err)
	for _, n := range r.notifiers {
		if sendErr := n.SendError(err); sendErr != nil {
			log.Warn().Err(sendErr).Msg("⚠️ Failed to send error notification")
		}
	}
}
