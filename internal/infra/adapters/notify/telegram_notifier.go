package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// TelegramNotifier pushes operator alerts to a private chat. The chat
// is the one place failures that need a human land, so delivery
// problems are logged at error level rather than swallowed.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ adapter.Notifier = (*TelegramNotifier)(nil)

func NewTelegramNotifier(token string, chatID int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is zero")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		log:    logger.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, ev adapter.OpsEvent) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatOpsEvent(ev))
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("alert delivery failed")
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatOpsEvent renders an alert as a short plain-text message.
func FormatOpsEvent(ev adapter.OpsEvent) string {
	text := fmt.Sprintf("[%s] %s", ev.Kind, ev.Summary)
	if ev.Detail != "" {
		text += "\n" + ev.Detail
	}
	if !ev.When.IsZero() {
		text += "\nat " + ev.When.Format("2006-01-02 15:04:05 MST")
	}
	return text
}
