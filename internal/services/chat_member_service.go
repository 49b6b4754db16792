package services

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate mockgen -source=chat_member_service.go -destination=mocks/chat_member_service.go

type chatMemberService struct {
	bot *tgbotapi.BotAPI
}

type ChatMemberService interface {
	// IsAdmin reports whether the user administers or created the chat.
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

func NewChatMemberService(bot *tgbotapi.BotAPI) ChatMemberService {
	return &chatMemberService{bot: bot}
}

func (s *chatMemberService) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	member, err := s.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, err
	}

	return member.IsAdministrator() || member.IsCreator(), nil
}
