package handlers

import (
	"context"
	"strings"
	"sync"

	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/tg_bot/commands"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	memberStatusMember        = "member"
	memberStatusAdministrator = "administrator"
	memberStatusLeft          = "left"
	memberStatusKicked        = "kicked"
)

type CommandHandler interface {
	Handle(ctx context.Context, update tgbotapi.Update) []tgbotapi.Chattable
}

type chatForgetter interface {
	ForgetChat(chatID int64)
}

type commandHandler struct {
	environment    models.ChatEnvironment
	engine         polls.Engine
	chatRepository repositories.ChatRepository
	userRepository repositories.UserRepository
	logger         *zap.SugaredLogger

	commands []commands.Command

	mu         sync.Mutex
	registered map[int64]struct{}
}

func NewCommandHandler(
	environment models.ChatEnvironment,
	engine polls.Engine,
	chatRepository repositories.ChatRepository,
	userRepository repositories.UserRepository,
	logger *zap.SugaredLogger,
	commands []commands.Command,
) CommandHandler {
	return &commandHandler{
		environment:    environment,
		engine:         engine,
		chatRepository: chatRepository,
		userRepository: userRepository,
		logger:         logger,
		commands:       commands,
		registered:     make(map[int64]struct{}),
	}
}

func (h *commandHandler) Handle(ctx context.Context, update tgbotapi.Update) []tgbotapi.Chattable {
	if update.MyChatMember != nil {
		h.handleMembership(ctx, update.MyChatMember)
		return []tgbotapi.Chattable{}
	}

	message := update.Message
	callbackQuery := update.CallbackQuery

	var (
		chat         *tgbotapi.Chat
		telegramUser *tgbotapi.User
	)

	switch {
	case message != nil:
		chat = message.Chat
		telegramUser = message.From
	case callbackQuery != nil && callbackQuery.Message != nil:
		chat = callbackQuery.Message.Chat
		telegramUser = callbackQuery.From
	}

	if chat == nil || telegramUser == nil {
		h.logger.Warn("received unknown updates")
		return []tgbotapi.Chattable{}
	}

	isGroup := chat.IsGroup() || chat.IsSuperGroup()
	if isGroup {
		h.register(ctx, chat)
	}

	request := commands.Request{
		ChatID:  chat.ID,
		IsGroup: isGroup,
		Sender:  telegramUser,
		User:    h.findUser(ctx, telegramUser),
	}

	if callbackQuery != nil {
		h.logger.Infow("received callback query", "data", callbackQuery.Data, "chatID", chat.ID, "userID", telegramUser.ID)

		parts := strings.SplitN(callbackQuery.Data, ":", 2)
		request.Command = parts[0]
		if len(parts) > 1 {
			request.Arguments = parts[1]
		}
		request.CallbackID = callbackQuery.ID

		return h.tryToHandleQueryCallback(ctx, request)
	}

	if message.IsCommand() {
		h.logger.Infow("received command", "command", message.Command(), "chatID", chat.ID, "userID", telegramUser.ID)

		request.Command = message.Command()
		request.Arguments = strings.TrimSpace(message.CommandArguments())
		return h.tryToHandleCommand(ctx, request)
	}

	if message.Text != "" {
		request.Arguments = message.Text
		return h.tryToHandleText(ctx, request)
	}

	return []tgbotapi.Chattable{}
}

func (h *commandHandler) findUser(ctx context.Context, telegramUser *tgbotapi.User) *models.User {
	user, err := h.userRepository.GetOneByTelegramID(ctx, telegramUser.ID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			h.logger.Warnw("failed to get user", "error", err, "telegramID", telegramUser.ID)
		}
		return nil
	}

	return user
}

// register records a group chat the first time this process sees it.
func (h *commandHandler) register(ctx context.Context, chat *tgbotapi.Chat) {
	h.mu.Lock()
	_, ok := h.registered[chat.ID]
	h.mu.Unlock()

	if ok {
		return
	}

	_, err := h.chatRepository.FindOrCreate(ctx, &models.Chat{
		ChatID:      chat.ID,
		Title:       chat.Title,
		Type:        chat.Type,
		Environment: h.environment,
		IsActive:    true,
	})
	if err != nil {
		h.logger.Errorw("failed to register chat", "error", err, "chatID", chat.ID)
		return
	}

	h.mu.Lock()
	h.registered[chat.ID] = struct{}{}
	h.mu.Unlock()

	h.logger.Infow("chat registered", "chatID", chat.ID, "title", chat.Title)
}

func (h *commandHandler) handleMembership(ctx context.Context, update *tgbotapi.ChatMemberUpdated) {
	chat := update.Chat
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return
	}

	oldStatus := update.OldChatMember.Status
	newStatus := update.NewChatMember.Status

	switch {
	case isAbsent(oldStatus) && isPresent(newStatus):
		h.logger.Infow("bot added to chat", "chatID", chat.ID)

		h.mu.Lock()
		delete(h.registered, chat.ID)
		h.mu.Unlock()

		h.register(ctx, &chat)

	case isPresent(oldStatus) && isAbsent(newStatus):
		h.logger.Infow("bot removed from chat", "chatID", chat.ID)

		h.mu.Lock()
		delete(h.registered, chat.ID)
		h.mu.Unlock()

		if err := h.engine.DeleteChat(ctx, chat.ID); err != nil {
			h.logger.Errorw("failed to delete polls of chat", "error", err, "chatID", chat.ID)
		}

		for _, command := range h.commands {
			if forgetter, ok := command.(chatForgetter); ok {
				forgetter.ForgetChat(chat.ID)
			}
		}

		if err := h.chatRepository.Deactivate(ctx, chat.ID); err != nil {
			h.logger.Errorw("failed to deactivate chat", "error", err, "chatID", chat.ID)
		}
	}
}

func isPresent(status string) bool {
	return status == memberStatusMember || status == memberStatusAdministrator
}

func isAbsent(status string) bool {
	return status == memberStatusLeft || status == memberStatusKicked
}

func (h *commandHandler) tryToHandleCommand(ctx context.Context, request commands.Request) []tgbotapi.Chattable {
	for _, handler := range h.commands {
		if handler.CanHandle(request.Command) {
			return handler.Handle(ctx, request)
		}
	}

	h.logger.Warnw("received unknown command", "command", request.Command)
	return []tgbotapi.Chattable{}
}

func (h *commandHandler) tryToHandleText(ctx context.Context, request commands.Request) []tgbotapi.Chattable {
	for _, handler := range h.commands {
		textHandler, ok := handler.(commands.TextCommand)
		if !ok {
			continue
		}

		if messages, handled := textHandler.HandleText(ctx, request); handled {
			return messages
		}
	}

	return []tgbotapi.Chattable{}
}

func (h *commandHandler) tryToHandleQueryCallback(ctx context.Context, request commands.Request) []tgbotapi.Chattable {
	if request.Command == "" {
		h.logger.Error("received empty query callback")
		return []tgbotapi.Chattable{}
	}

	for _, handler := range h.commands {
		if handler.CanHandle(request.Command) {
			return handler.Handle(ctx, request)
		}
	}

	h.logger.Errorw("received unknown callback", "command", request.Command)
	return []tgbotapi.Chattable{}
}
