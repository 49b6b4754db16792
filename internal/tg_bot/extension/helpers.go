package extension

import (
	"strconv"
	"strings"

	"shift_coordination_system/internal/db/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply addresses the text to the sender by first name.
func Reply(chatID int64, sender *tgbotapi.User, text string) tgbotapi.Chattable {
	return tgbotapi.NewMessage(chatID, WithName(text, sender))
}

func WithName(text string, sender *tgbotapi.User) string {
	if sender == nil || sender.FirstName == "" {
		return text
	}

	prefix := sender.FirstName + ","
	if strings.HasPrefix(text, prefix) {
		return text
	}
	return prefix + " " + text
}

func Answer(callbackID, text string) tgbotapi.Chattable {
	return tgbotapi.NewCallback(callbackID, text)
}

func Alert(callbackID, text string) tgbotapi.Chattable {
	return tgbotapi.NewCallbackWithAlert(callbackID, text)
}

// VoterID is the username, or the numeric id for users without one.
func VoterID(sender *tgbotapi.User) string {
	if sender.UserName != "" {
		return sender.UserName
	}
	return strconv.FormatInt(sender.ID, 10)
}

func IsEmployee(user *models.User) bool {
	return user != nil && user.Role == models.UserRoleEmployee
}
