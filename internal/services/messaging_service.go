package services

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate mockgen -source=messaging_service.go -destination=mocks/messaging_service.go

// Button is an inline button; Data is delivered back as callback data.
type Button struct {
	Text string
	Data string
}

type messagingService struct {
	bot *tgbotapi.BotAPI
}

type MessagingService interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]Button) (int, error)
	// EditMessage replaces the text; an empty keyboard removes the buttons.
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard [][]Button) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

func NewMessagingService(bot *tgbotapi.BotAPI) MessagingService {
	return &messagingService{bot: bot}
}

func (s *messagingService) SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]Button) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	message := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		message.ReplyMarkup = inlineKeyboard(keyboard)
	}

	sent, err := s.bot.Send(message)
	if err != nil {
		return 0, err
	}

	return sent.MessageID, nil
}

func (s *messagingService) EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard [][]Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	markup := inlineKeyboard(keyboard)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)

	_, err := s.bot.Request(edit)
	return err
}

func (s *messagingService) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func inlineKeyboard(keyboard [][]Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
