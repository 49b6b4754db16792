package commands

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const startCommandName = "start"

type startCommand struct {
	logger *zap.SugaredLogger
}

func NewStartCommand(logger *zap.SugaredLogger) Command {
	return &startCommand{logger: logger}
}

func (c *startCommand) CanHandle(command string) bool {
	return command == startCommandName
}

func (c *startCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	c.logger.Infow("start command received", "chatID", request.ChatID, "userID", request.Sender.ID)

	text := fmt.Sprintf("Привет, %s! Используйте /help для списка команд.", request.Sender.FirstName)
	if request.Sender.FirstName == "" {
		text = "Привет! Используйте /help для списка команд."
	}

	return []tgbotapi.Chattable{tgbotapi.NewMessage(request.ChatID, text)}
}
