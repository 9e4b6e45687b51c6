package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobsync-engine/internal/domain"
)

// Summary describes a finished search.
type Summary struct {
	SearchURL string
	Found     int
	Saved     int
	Failed    int
	New       []domain.JobRecord
	Err       error
}

type Notifier interface {
	SearchDone(ctx context.Context, s Summary) error
}

// Nop is used when notifications are disabled.
type Nop struct{}

func (Nop) SearchDone(context.Context, Summary) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot    sender
	chatID int64
	// MaxJobs caps how many listings one message names.
	MaxJobs int
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, MaxJobs: 10}, nil
}

func (t *Telegram) SearchDone(ctx context.Context, s Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, Format(s, t.MaxJobs))
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// Format renders s as Telegram HTML.
func Format(s Summary, maxJobs int) string {
	var b strings.Builder
	if s.Err != nil {
		fmt.Fprintf(&b, "⚠️ <b>Search failed</b>\n%s\n", html.EscapeString(s.Err.Error()))
	} else {
		b.WriteString("✅ <b>Search finished</b>\n")
	}
	fmt.Fprintf(&b, "found %d, saved %d, rejected %d\n", s.Found, s.Saved, s.Failed)

	for i, r := range s.New {
		if maxJobs > 0 && i >= maxJobs {
			fmt.Fprintf(&b, "…and %d more\n", len(s.New)-i)
			break
		}
		line := html.EscapeString(r.Title)
		if r.Company != "" {
			line += " · " + html.EscapeString(r.Company)
		}
		if r.Location != "" {
			line += " · " + html.EscapeString(r.Location)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">%s</a>", html.EscapeString(r.URL), line)
		} else {
			fmt.Fprintf(&b, "\n• %s", line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
