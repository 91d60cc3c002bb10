// Package notify delivers fire-and-forget reward notifications over
// Telegram. Delivery failures are logged and dropped; a grant must
// never roll back because a chat message could not be sent.
package notify

import (
	"fmt"
	"os"

	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Telegram struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramFromEnv builds a notifier from the TELEGRAM_TOKEN env var.
// Returns an error when the token is unset so the caller can run
// without notifications.
func NewTelegramFromEnv() (*Telegram, error) {
	token := os.Getenv(constants.EnvTelegramToken)
	if token == "" {
		return nil, fmt.Errorf("%s not set", constants.EnvTelegramToken)
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{bot: bot}, nil
}

// Send delivers text to the chat asynchronously.
func (t *Telegram) Send(chatID int64, text string) {
	if t == nil || t.bot == nil || chatID == 0 {
		return
	}
	go func() {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			logging.Error("telegram send failed", err, logging.Fields{"chat_id": chatID})
		}
	}()
}
