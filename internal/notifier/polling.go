package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply is the answer to one chat command. Chart is optional; when set the
// text becomes its caption.
type Reply struct {
	Text   string
	Chart  []byte
	Format string
}

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) Reply

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)
	t.log.Infow("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.log.Infow("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update, handler)
		}
	}
}

// handleUpdate answers commands from the configured chat only; every other
// chat is ignored so the bot cannot spend the source quota for strangers.
func (t *TelegramNotifier) handleUpdate(ctx context.Context, update tgbotapi.Update, handler CommandHandler) {
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if chatID != t.chatID {
		t.log.Warnw("ignoring command from unknown chat", "chat_id", chatID)
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}
	t.log.Infow("received command", "chat_id", chatID, "text", text)

	reply := handler(ctx, text)
	var err error
	switch {
	case len(reply.Chart) > 0:
		err = t.sendChart(chatID, reply.Chart, reply.Format, reply.Text)
	case reply.Text != "":
		err = t.sendText(chatID, reply.Text)
	}
	if err != nil {
		t.log.Errorw("send reply failed", "chat_id", chatID, "error", err)
	}
}
