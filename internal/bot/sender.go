package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender отправляет текстовые ответы пользователю.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

type telegramSender struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

func newTelegramSender(bot *tgbotapi.BotAPI, log *zap.Logger) Sender {
	return &telegramSender{
		bot: bot,
		log: log,
	}
}

// SendMessage отправляет текст без разметки.
func (s *telegramSender) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Debug("message sent", zap.Int64("chat_id", chatID), zap.Int("text_length", len(text)))
	return nil
}
