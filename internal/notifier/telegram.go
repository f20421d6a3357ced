package notifier

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"StockCorrelator/internal/logger"
)

// Notifier delivers reports to the configured chat.
type Notifier interface {
	Send(text string) error
	SendChart(chart []byte, format, caption string) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken string, chatID int64, proxyURL string) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{
		Timeout:   75 * time.Second, // above the 60s long-poll timeout
		Transport: transport,
	}
	return NewTelegramNotifierWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint, client)
}

// NewTelegramNotifierWithEndpoint points the bot at a custom API endpoint,
// formatted like tgbotapi.APIEndpoint. The token is verified with getMe.
func NewTelegramNotifierWithEndpoint(botToken string, chatID int64, endpoint string, client *http.Client) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	api, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log := logger.Get().With("component", "telegram")
	log.Infow("telegram bot authorized", "account", api.Self.UserName)
	return &TelegramNotifier{api: api, chatID: chatID, log: log}, nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.sendText(t.chatID, text)
}

// SendChart sends a rendered chart with an HTML caption to the configured chat.
func (t *TelegramNotifier) SendChart(chart []byte, format, caption string) error {
	return t.sendChart(t.chatID, chart, format, caption)
}

func (t *TelegramNotifier) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// sendChart uploads PNG charts as photos. Telegram does not render SVG
// photos, so those go out as documents.
func (t *TelegramNotifier) sendChart(chatID int64, chart []byte, format, caption string) error {
	file := tgbotapi.FileBytes{Name: "correlation." + format, Bytes: chart}

	var c tgbotapi.Chattable
	if format == "svg" {
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		doc.ParseMode = tgbotapi.ModeHTML
		c = doc
	} else {
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		c = photo
	}
	if _, err := t.api.Send(c); err != nil {
		return fmt.Errorf("send chart: %w", err)
	}
	return nil
}
