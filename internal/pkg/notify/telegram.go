package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// RunReport is the outcome of one scraper run.
type RunReport struct {
	Range    models.PeriodRange
	Fixtures int
	Written  int
	Skipped  int
	Failed   int
	Rows     int
	Duration time.Duration
	Err      error // fatal error that ended the run, if any
}

// Notifier delivers a run report somewhere a human will see it.
type Notifier interface {
	NotifyRun(ctx context.Context, report RunReport) error
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts run reports to a Telegram chat
type TelegramNotifier struct {
	bot    sender
	chatID int64
}

// NewTelegramNotifier connects to the bot API and checks the token.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram bot_token and chat_id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	me, err := bot.GetMe()
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	slog.Info("Telegram notifier ready", "bot", me.UserName, "chat_id", chatID)

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyRun(ctx context.Context, report RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatReport(report))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatReport renders report as plain text.
func FormatReport(r RunReport) string {
	var b strings.Builder
	if r.Err != nil {
		b.WriteString("❌ FPLStats run failed\n")
	} else {
		b.WriteString("✅ FPLStats run finished\n")
	}
	if r.Range.Start == r.Range.End {
		fmt.Fprintf(&b, "Matchday %d\n", r.Range.Start)
	} else {
		fmt.Fprintf(&b, "Matchdays %d-%d\n", r.Range.Start, r.Range.End)
	}
	fmt.Fprintf(&b, "Fixtures: %d (written %d, skipped %d, failed %d)\n", r.Fixtures, r.Written, r.Skipped, r.Failed)
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Duration: %s", r.Duration.Round(time.Second))
	if r.Err != nil {
		fmt.Fprintf(&b, "\nError: %v", r.Err)
	}
	return b.String()
}
