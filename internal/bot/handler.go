package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Torrentov/calories-count-bot/internal/config"
	"github.com/Torrentov/calories-count-bot/internal/domain"
	"github.com/Torrentov/calories-count-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageHandler обрабатывает текст пользователя и возвращает ответ.
type MessageHandler interface {
	Handle(ctx context.Context, userID int64, text string) service.Reply
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   Sender
	handler  MessageHandler
	metrics  *Metrics
	profiles func() int
	log      *zap.Logger

	pollingTimeout int
	disp           *dispatcher
}

// NewBot подключается к Telegram API. profiles используется для метрики числа профилей.
func NewBot(cfg config.TelegramConfig, handler MessageHandler, metrics *Metrics, profiles func() int, log *zap.Logger) (*Bot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	botAPI.Debug = cfg.Debug

	b := newBot(newTelegramSender(botAPI, log), handler, metrics, profiles, log)
	b.api = botAPI
	b.pollingTimeout = cfg.PollingTimeout
	return b, nil
}

func newBot(sender Sender, handler MessageHandler, metrics *Metrics, profiles func() int, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	if profiles == nil {
		profiles = func() int { return 0 }
	}
	b := &Bot{
		sender:         sender,
		handler:        handler,
		metrics:        metrics,
		profiles:       profiles,
		log:            log,
		pollingTimeout: 60,
	}
	b.disp = newDispatcher(b.process)
	return b
}

// Start получает обновления до отмены ctx, затем дожидается обработки принятых сообщений.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollingTimeout

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("bot authorized", zap.String("username", b.api.Self.UserName))

	defer b.disp.wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	b.log.Info("message received",
		zap.Int64("user_id", msg.From.ID),
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("text", msg.Text))

	b.disp.dispatch(ctx, msg.From.ID, job{chatID: msg.Chat.ID, text: msg.Text})
}

func (b *Bot) process(ctx context.Context, userID int64, j job) {
	start := time.Now()
	reply := b.handler.Handle(ctx, userID, j.text)
	elapsed := time.Since(start)

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
		b.metrics.UpdateProcessingTime.Observe(elapsed.Seconds())
		if reply.Command != "" {
			b.metrics.CommandsProcessed.WithLabelValues(reply.Command).Inc()
			b.metrics.CommandDuration.WithLabelValues(reply.Command).Observe(elapsed.Seconds())
		}
		if reply.Err != nil {
			b.metrics.ErrorsTotal.WithLabelValues(errorKind(reply.Err)).Inc()
		}
		b.metrics.ProfilesTotal.Set(float64(b.profiles()))
	}

	if reply.Err != nil {
		b.log.Debug("user error",
			zap.Int64("user_id", userID),
			zap.String("command", reply.Command),
			zap.Error(reply.Err))
	}

	if reply.Text == "" {
		return
	}
	if err := b.sender.SendMessage(j.chatID, reply.Text); err != nil {
		b.log.Error("send reply failed", zap.Int64("chat_id", j.chatID), zap.Error(err))
		if b.metrics != nil {
			b.metrics.ErrorsTotal.WithLabelValues("send").Inc()
		}
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrLookupFailure):
		return "lookup_failure"
	default:
		return "other"
	}
}
