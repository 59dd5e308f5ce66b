package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Wilfredoo/crew-scraper/internal/scraper"
)

// maxListed caps how many new addresses a summary spells out.
const maxListed = 20

type chattable interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    chattable
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// FormatRunSummary renders a run summary as MarkdownV2.
func FormatRunSummary(s scraper.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎭 *%s run* `%s`\n", escapeMarkdown(s.Source), escapeMarkdown(shortID(s.RunID)))
	fmt.Fprintf(&b, "📄 Pages: %d \\(%s\\)\n", s.Pages, escapeMarkdown(string(s.StopReason)))
	fmt.Fprintf(&b, "🎬 Jobs: %d\n", s.JobsFound)
	fmt.Fprintf(&b, "📧 Unique emails: %d\n", s.UniqueEmails)
	fmt.Fprintf(&b, "🆕 New: %d, 🔁 Repeated: %d\n", len(s.NewEmails), s.Repeated)

	for i, email := range s.NewEmails {
		if i == maxListed {
			fmt.Fprintf(&b, "  … and %d more\n", len(s.NewEmails)-maxListed)
			break
		}
		fmt.Fprintf(&b, "  • %s\n", escapeMarkdown(email))
	}

	if s.OutputFile != "" {
		fmt.Fprintf(&b, "💾 %s\n", escapeMarkdown(s.OutputFile))
	}
	if s.Mail != nil {
		fmt.Fprintf(&b, "✉️ Sent: %d, failed: %d\n", s.Mail.Sent, len(s.Mail.Failed))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (b *Bot) SendRunSummary(s scraper.RunSummary) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatRunSummary(s))
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
