// Package notifier implements the outbound notification port on top of the
// Telegram Bot API.
package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageSender is the slice of the Telegram client the notifier needs.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	api MessageSender
}

func NewTelegramNotifier(api MessageSender) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

// Send delivers text to the given chat in a single attempt. The Telegram
// client has no context support, so the call runs in a goroutine and the
// method returns early with ctx.Err() when the caller's deadline expires;
// expiry counts as a failed dispatch.
func (n *TelegramNotifier) Send(ctx context.Context, chatID int64, text string) error {
	done := make(chan error, 1)
	go func() {
		_, err := n.api.Send(tgbotapi.NewMessage(chatID, text))
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
