package commands

import (
	"context"

	"shift_coordination_system/internal/tg_bot/extension"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const myRoleCommandName = "myrole"

type myRoleCommand struct{}

func NewMyRoleCommand() Command {
	return &myRoleCommand{}
}

func (c *myRoleCommand) CanHandle(command string) bool {
	return command == myRoleCommandName
}

func (c *myRoleCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	if request.User == nil {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Вы не найдены в базе данных.")}
	}

	return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Ваша роль: "+request.User.Role.Title())}
}
