package commands

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpCommandName = "help"

var helpLines = []string{
	"Доступные команды:",
	"/help — показать это сообщение",
	"/myrole — показать вашу роль",
	"/poll — опрос смены на завтра (Менеджеры+)",
	"/pollsync — синхронизация: кто сегодня на смене (Менеджеры+)",
	"/openshift — открыть смену (отметить начало работы)",
	"/closeshift — закрыть смену (внести количество выданных товаров)",
}

type helpCommand struct{}

func NewHelpCommand() Command {
	return &helpCommand{}
}

func (c *helpCommand) CanHandle(command string) bool {
	return command == helpCommandName
}

func (c *helpCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	return []tgbotapi.Chattable{tgbotapi.NewMessage(request.ChatID, strings.Join(helpLines, "\n"))}
}
