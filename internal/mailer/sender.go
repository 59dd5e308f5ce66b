package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Wilfredoo/crew-scraper/internal/archive"
	"github.com/Wilfredoo/crew-scraper/internal/config"
)

const testPrefix = "TEST EMAIL\n\n"

// BatchResult summarizes one SendAll call.
type BatchResult struct {
	Total  int
	Sent   int
	Failed []string
}

func (r BatchResult) OK() bool { return r.Sent == r.Total }

// Sender mails the configured message to a list of recipients, pausing the
// configured delay after every send but the last.
type Sender struct {
	mailer  Mailer
	subject string
	body    string
	self    string
	delay   time.Duration
}

func NewSender(m Mailer, cfg config.MailConfig) *Sender {
	return &Sender{
		mailer:  m,
		subject: cfg.Subject,
		body:    cfg.Body,
		self:    cfg.Sender(),
		delay:   cfg.Delay,
	}
}

// SendAll sends to every recipient. A failed address is recorded and the
// batch goes on; a cancelled context fails the rest.
func (s *Sender) SendAll(ctx context.Context, recipients []string) BatchResult {
	res := BatchResult{Total: len(recipients)}
	log.Info().Int("emails", len(recipients)).Msg("📧 Starting email dispatch...")

	for i, to := range recipients {
		err := ctx.Err()
		if err == nil && i > 0 {
			err = s.pause(ctx)
		}
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Dispatch interrupted")
			res.Failed = append(res.Failed, recipients[i:]...)
			break
		}

		log.Info().Msgf("Sending email %d/%d to %s...", i+1, len(recipients), to)
		if err := s.mailer.Send(ctx, to, s.subject, s.body); err != nil {
			log.Error().Err(err).Str("to", to).Msg("❌ Failed to send")
			res.Failed = append(res.Failed, to)
			continue
		}
		res.Sent++
		log.Info().Str("to", to).Msg("✅ Sent successfully")
	}

	s.logSummary(res)
	return res
}

// pause blocks for the full delay counted from the end of the previous send.
func (s *Sender) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	gap := rate.NewLimiter(rate.Every(s.delay), 1)
	gap.Allow() // drain the initial token
	return gap.Wait(ctx)
}

// SendFile mails every address listed in an output file.
func (s *Sender) SendFile(ctx context.Context, path string) (BatchResult, error) {
	recipients, err := archive.ReadEmails(path)
	if err != nil {
		return BatchResult{}, fmt.Errorf("read recipients: %w", err)
	}
	log.Info().Str("file", path).Int("emails", len(recipients)).Msg("📧 Found emails to send")
	return s.SendAll(ctx, recipients), nil
}

// SendTest mails the message, marked as a test, to the sender itself.
func (s *Sender) SendTest(ctx context.Context) error {
	if err := s.mailer.Send(ctx, s.self, s.subject, testPrefix+s.body); err != nil {
		return fmt.Errorf("test email to %s: %w", s.self, err)
	}
	log.Info().Str("to", s.self).Msg("✉️ Test email sent successfully")
	return nil
}

func (s *Sender) logSummary(res BatchResult) {
	log.Info().
		Int("total", res.Total).
		Int("sent", res.Sent).
		Int("failed", len(res.Failed)).
		Msg("📊 Email sending summary")
	for _, f := range res.Failed {
		log.Warn().Msgf("   - %s", f)
	}
}
