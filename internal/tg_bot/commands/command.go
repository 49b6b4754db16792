package commands

import (
	"context"
	"strconv"

	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Request is an incoming command, callback query or plain text message.
type Request struct {
	Command   string
	Arguments string
	ChatID    int64
	IsGroup   bool
	Sender    *tgbotapi.User
	// User is nil when the sender is not registered.
	User *models.User
	// CallbackID is set for callback queries only.
	CallbackID string
}

type Command interface {
	CanHandle(command string) bool
	Handle(ctx context.Context, request Request) []tgbotapi.Chattable
}

// TextCommand continues a conversation started by a command.
type TextCommand interface {
	Command
	HandleText(ctx context.Context, request Request) ([]tgbotapi.Chattable, bool)
}

// TargetChatID is the chat named in callback data, falling back to the
// chat the update came from.
func (r Request) TargetChatID() int64 {
	if r.CallbackID != "" {
		if chatID, err := strconv.ParseInt(r.Arguments, 10, 64); err == nil {
			return chatID
		}
	}
	return r.ChatID
}

type authorizer struct {
	members services.ChatMemberService
	logger  *zap.SugaredLogger
}

// allowed lets through users holding role and administrators of the chat.
func (a authorizer) allowed(ctx context.Context, request Request, role models.UserRole) bool {
	if request.User.HasRole(role) {
		return true
	}

	if !request.IsGroup || a.members == nil {
		return false
	}

	isAdmin, err := a.members.IsAdmin(ctx, request.TargetChatID(), request.Sender.ID)
	if err != nil {
		a.logger.Warnw("failed to check chat admin", "error", err, "chatID", request.ChatID, "userID", request.Sender.ID)
		return false
	}

	return isAdmin
}
