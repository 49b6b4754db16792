package tgbot

import (
	"context"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/tg_bot/handlers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var allowedUpdates = []string{"message", "callback_query", "my_chat_member"}

type bot struct {
	api     *tgbotapi.BotAPI
	handler handlers.CommandHandler
	config  configs.Bot
	logger  *zap.SugaredLogger
}

type Bot interface {
	// Start runs the update loop until ctx is cancelled.
	Start(ctx context.Context) error
}

func NewBot(api *tgbotapi.BotAPI, handler handlers.CommandHandler, config configs.Bot, logger *zap.SugaredLogger) Bot {
	return &bot{
		api:     api,
		handler: handler,
		config:  config,
		logger:  logger,
	}
}

func NewBotAPI(config configs.Bot) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, err
	}

	api.Debug = config.Debug
	return api, nil
}

func (b *bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.UpdateTimeout
	u.AllowedUpdates = allowedUpdates

	updates := b.api.GetUpdatesChan(u)
	b.logger.Infow("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update)
		}
	}
}

func (b *bot) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorw("recovered from panic while handling update", "updateID", update.UpdateID, "panic", r)
		}
	}()

	for _, message := range b.handler.Handle(ctx, update) {
		if _, err := b.api.Request(message); err != nil {
			b.logger.Errorw("failed to send message", "error", err, "updateID", update.UpdateID)
		}
	}
}
