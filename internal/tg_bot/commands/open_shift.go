package commands

import (
	"context"
	"fmt"
	"time"

	"shift_coordination_system/internal"
	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/shifts"
	"shift_coordination_system/internal/tg_bot/extension"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const openShiftCommandName = "openshift"

type openShiftCommand struct {
	workShiftRepository repositories.WorkShiftRepository
	clock               clock.Clock
	location            *time.Location
	logger              *zap.SugaredLogger
}

func NewOpenShiftCommand(
	workShiftRepository repositories.WorkShiftRepository,
	clk clock.Clock,
	location *time.Location,
	logger *zap.SugaredLogger,
) Command {
	return &openShiftCommand{
		workShiftRepository: workShiftRepository,
		clock:               clk,
		location:            location,
		logger:              logger,
	}
}

func (c *openShiftCommand) CanHandle(command string) bool {
	return command == openShiftCommandName
}

func (c *openShiftCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	if request.User == nil {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Вы не найдены в базе данных.")}
	}

	record, err := todaysShift(ctx, c.workShiftRepository, request, c.clock.Now(), c.location)
	if err != nil {
		c.logger.Errorw("failed to get today's shift", "error", err, "chatID", request.ChatID, "userID", request.Sender.ID)
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Ошибка при открытии смены.")}
	}

	if record == nil {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "На сегодня у вас нет смены.")}
	}

	if record.IsOpened {
		openedAt := ""
		if record.OpenedAt != nil {
			openedAt = internal.FormatTime(record.OpenedAt.In(c.location))
		}
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, fmt.Sprintf("Смена уже открыта в %s", openedAt))}
	}

	if err := c.workShiftRepository.MarkOpened(ctx, record.ID, c.clock.Now()); err != nil {
		c.logger.Errorw("failed to open shift", "error", err, "workShiftID", record.ID)
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Ошибка при открытии смены.")}
	}

	c.logger.Infow("shift opened", "workShiftID", record.ID, "login", request.User.Login)
	return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "✅ Смена открыта! Удачной работы.")}
}

// todaysShift finds the sender's record for the local calendar day of now.
func todaysShift(
	ctx context.Context,
	workShiftRepository repositories.WorkShiftRepository,
	request Request,
	now time.Time,
	location *time.Location,
) (*models.WorkShift, error) {
	start, end := shifts.DayRange(now, location)

	records, err := workShiftRepository.GetManyByChatAndDateRange(ctx, request.ChatID, start, end)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if record.TelegramID == request.Sender.ID {
			return record, nil
		}
	}

	return nil, nil
}
