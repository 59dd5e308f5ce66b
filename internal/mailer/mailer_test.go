package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wilfredoo/crew-scraper/internal/config"
)

type sent struct {
	to, subject, body string
	at, done          time.Time
}

type fakeMailer struct {
	calls   []sent
	fail    map[string]bool
	latency time.Duration
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	call := sent{to: to, subject: subject, body: body, at: time.Now()}
	time.Sleep(f.latency)
	call.done = time.Now()
	f.calls = append(f.calls, call)
	if f.fail[to] {
		return errors.New("550 mailbox unavailable")
	}
	return nil
}

func testMailConfig(delay time.Duration) config.MailConfig {
	cfg := config.Default().Mail
	cfg.Username = "me@example.com"
	cfg.Delay = delay
	return cfg
}

func TestSendAll_ContinuesAfterFailure(t *testing.T) {
	m := &fakeMailer{fail: map[string]bool{"b@x.com": true}}
	s := NewSender(m, testMailConfig(0))

	res := s.SendAll(testContext(t), []string{"a@x.com", "b@x.com", "c@x.com"})
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, []string{"b@x.com"}, res.Failed)
	assert.False(t, res.OK())
	require.Len(t, m.calls, 3)
	assert.Equal(t, "Actor available for your production", m.calls[0].subject)
}

func TestSendAll_SpacesSends(t *testing.T) {
	m := &fakeMailer{}
	s := NewSender(m, testMailConfig(30*time.Millisecond))

	start := time.Now()
	res := s.SendAll(testContext(t), []string{"a@x.com", "b@x.com", "c@x.com"})
	require.True(t, res.OK())

	//first send goes out at once, the last is not followed by a wait
	assert.Less(t, m.calls[0].at.Sub(start), 20*time.Millisecond)
	assert.GreaterOrEqual(t, m.calls[2].at.Sub(m.calls[0].at), 50*time.Millisecond)
}

func TestSendAll_FullDelayAfterSlowSend(t *testing.T) {
	const delay = 60 * time.Millisecond
	m := &fakeMailer{latency: 100 * time.Millisecond, fail: map[string]bool{"b@x.com": true}}
	s := NewSender(m, testMailConfig(delay))

	res := s.SendAll(testContext(t), []string{"a@x.com", "b@x.com", "c@x.com"})
	assert.Equal(t, 2, res.Sent)
	require.Len(t, m.calls, 3)

	for i := 1; i < len(m.calls); i++ {
		gap := m.calls[i].at.Sub(m.calls[i-1].done)
		assert.GreaterOrEqual(t, gap, delay-5*time.Millisecond, "pause before send %d", i+1)
	}
}

func TestSendAll_Cancelled(t *testing.T) {
	m := &fakeMailer{}
	s := NewSender(m, testMailConfig(time.Hour))

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	res := s.SendAll(ctx, []string{"a@x.com", "b@x.com"})
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, res.Failed)
}

func TestSendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails_20250923_101500.txt")
	require.NoError(t, os.WriteFile(path, []byte("a@x.com\n\nb@x.com\n"), 0644))

	m := &fakeMailer{}
	res, err := NewSender(m, testMailConfig(0)).SendFile(testContext(t), path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)

	_, err = NewSender(m, testMailConfig(0)).SendFile(testContext(t), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSendTest(t *testing.T) {
	m := &fakeMailer{}
	require.NoError(t, NewSender(m, testMailConfig(0)).SendTest(testContext(t)))

	require.Len(t, m.calls, 1)
	assert.Equal(t, "me@example.com", m.calls[0].to)
	assert.Equal(t, "TEST EMAIL\n\nHi,\n\nMaybe I could be a good fit for your film.\n\nCheers", m.calls[0].body)
}

func TestCompose(t *testing.T) {
	date := time.Date(2025, time.September, 23, 10, 0, 0, 0, time.UTC)
	raw, err := Compose("me@example.com", "casting@example.org", "Actor available", "Hi there", date)
	require.NoError(t, err)

	r, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Actor available", subject)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "casting@example.org", to[0].Address)

	got, err := r.Header.Date()
	require.NoError(t, err)
	assert.True(t, got.Equal(date))

	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", string(body))
}
