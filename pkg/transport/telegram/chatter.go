// Package telegram implements a chat transport on the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/neoxlab/notify/pkg/notify"
)

var (
	ErrInvalidConfig = errors.New("telegram: invalid config")
	ErrSendFailed    = errors.New("telegram: failed to send message")
)

// Config holds Telegram transport configuration. DefaultChatID receives
// messages that carry no explicit chat id.
type Config struct {
	BotToken      string `env:"TELEGRAM_BOT_TOKEN,required"`
	DefaultChatID int64  `env:"TELEGRAM_DEFAULT_CHAT_ID"`
}

// Chatter sends chat messages through a Telegram bot. It implements
// notify.Chatter for the "telegram" transport.
type Chatter struct {
	bot *tgbotapi.BotAPI
	cfg Config
}

// New creates a Telegram-backed chatter. Constructing the bot verifies the
// token against the Bot API.
func New(cfg Config) (*Chatter, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("%w: BotToken is required", ErrInvalidConfig)
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &Chatter{bot: bot, cfg: cfg}, nil
}

// SendChat implements notify.Chatter. A subject renders as the first line of
// the message. The returned id is the Telegram message id within the chat.
func (c *Chatter) SendChat(ctx context.Context, msg notify.ChatMessage) (string, error) {
	chatID, err := c.resolveChatID(msg.Telegram)
	if err != nil {
		return "", err
	}

	text := msg.Body
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + text
	}

	out := tgbotapi.NewMessage(chatID, text)
	if msg.Telegram != nil {
		out.ParseMode = msg.Telegram.ParseMode
		out.DisableWebPagePreview = msg.Telegram.DisableWebPagePreview
	}

	sent, err := c.bot.Send(out)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

func (c *Chatter) resolveChatID(opts *notify.TelegramOptions) (int64, error) {
	if opts != nil && opts.ChatID != "" {
		id, err := strconv.ParseInt(opts.ChatID, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid chat id %q", ErrSendFailed, opts.ChatID)
		}
		return id, nil
	}
	if c.cfg.DefaultChatID == 0 {
		return 0, fmt.Errorf("%w: no chat id given and no default configured", ErrSendFailed)
	}
	return c.cfg.DefaultChatID, nil
}
