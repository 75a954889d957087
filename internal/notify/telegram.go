package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"

	"meetcrm/config"
)

// TelegramBot posts messages to the institute's group chat. It only
// sends; no updates are polled.
type TelegramBot struct {
	bot    *tele.Bot
	chatID int64
	logger *zap.Logger
}

func NewTelegramBot(cfg config.TelegramConfig, logger *zap.Logger) (*TelegramBot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	if cfg.GroupChatID == 0 {
		return nil, fmt.Errorf("telegram group chat id is not set")
	}

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: nil,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	return &TelegramBot{
		bot:    b,
		chatID: cfg.GroupChatID,
		logger: logger,
	}, nil
}

// SendToGroup implements reminder.GroupNotifier.
func (t *TelegramBot) SendToGroup(ctx context.Context, text string) error {
	_, err := t.bot.Send(tele.ChatID(t.chatID), text)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	t.logger.Debug("Telegram message sent", zap.Int64("chat_id", t.chatID))
	return nil
}
