package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// Telegram mirrors notifications to a chat. Messages go out as plain text
// because the template is user supplied.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return newTelegram(token, chatID, tgbotapi.APIEndpoint)
}

func newTelegram(token string, chatID int64, endpoint string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init telegram bot")
	}

	//turn this on in case of debug
	//api.Debug = true

	return &Telegram{
		api:    api,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.api.Send(msg); err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	return nil
}

// SendError reports a fatal error before the process exits.
func (t *Telegram) SendError(errReq error) error {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("❌ Notifier stopped: %v", errReq))
	_, err := t.api.Send(msg)
	return err
}
