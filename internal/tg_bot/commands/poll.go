package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/services"
	"shift_coordination_system/internal/shifts"
	"shift_coordination_system/internal/tg_bot/extension"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	pollCommandName     = "poll"
	syncPollCommandName = "pollsync"
)

type pollCommand struct {
	name                string
	purpose             models.PollPurpose
	engine              polls.Engine
	workShiftRepository repositories.WorkShiftRepository
	policies            polls.Policies
	clock               clock.Clock
	location            *time.Location
	authorizer          authorizer
	logger              *zap.SugaredLogger
}

// NewPollCommand opens a poll for tomorrow's shift, replacing records
// already materialized for that date.
func NewPollCommand(
	engine polls.Engine,
	workShiftRepository repositories.WorkShiftRepository,
	members services.ChatMemberService,
	policies polls.Policies,
	clk clock.Clock,
	location *time.Location,
	logger *zap.SugaredLogger,
) Command {
	return newPollCommand(pollCommandName, models.PollPurposeShift, engine, workShiftRepository, members, policies, clk, location, logger)
}

// NewSyncPollCommand asks who is on shift today unless today is already recorded.
func NewSyncPollCommand(
	engine polls.Engine,
	workShiftRepository repositories.WorkShiftRepository,
	members services.ChatMemberService,
	policies polls.Policies,
	clk clock.Clock,
	location *time.Location,
	logger *zap.SugaredLogger,
) Command {
	return newPollCommand(syncPollCommandName, models.PollPurposeSync, engine, workShiftRepository, members, policies, clk, location, logger)
}

func newPollCommand(
	name string,
	purpose models.PollPurpose,
	engine polls.Engine,
	workShiftRepository repositories.WorkShiftRepository,
	members services.ChatMemberService,
	policies polls.Policies,
	clk clock.Clock,
	location *time.Location,
	logger *zap.SugaredLogger,
) *pollCommand {
	return &pollCommand{
		name:                name,
		purpose:             purpose,
		engine:              engine,
		workShiftRepository: workShiftRepository,
		policies:            policies,
		clock:               clk,
		location:            location,
		authorizer:          authorizer{members: members, logger: logger},
		logger:              logger,
	}
}

func (c *pollCommand) CanHandle(command string) bool {
	return command == c.name
}

func (c *pollCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	c.logger.Infow("poll command received", "command", c.name, "chatID", request.ChatID, "userID", request.Sender.ID)

	if !request.IsGroup {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Эта команда работает только в группах.")}
	}

	if !c.authorizer.allowed(ctx, request, models.UserRoleManager) {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender,
			"У вас нет прав для создания опроса. Требуется роль: Менеджер или выше, либо права администратора группы.")}
	}

	var (
		reply []tgbotapi.Chattable
		err   error
	)

	if c.purpose == models.PollPurposeSync {
		reply, err = c.checkToday(ctx, request)
	} else {
		err = c.clearTargetDate(ctx, request.ChatID)
	}
	if err != nil {
		c.logger.Errorw("failed to prepare poll", "error", err, "chatID", request.ChatID)
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Ошибка при создании опроса.")}
	}
	if reply != nil {
		return reply
	}

	poll, err := c.engine.Create(ctx, request.ChatID, c.purpose, models.PollSourceManual)
	if err != nil {
		c.logger.Errorw("failed to create poll", "error", err, "chatID", request.ChatID, "purpose", c.purpose)
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Ошибка при создании опроса.")}
	}

	c.logger.Infow("poll created", "chatID", poll.ChatID, "messageID", poll.MessageID, "purpose", poll.Purpose)
	return nil
}

func (c *pollCommand) clearTargetDate(ctx context.Context, chatID int64) error {
	target := shifts.ShiftDate(c.clock.Now(), c.policies[c.purpose].DayOffset)

	deleted, err := c.workShiftRepository.DeleteManyByChatAndDateRange(ctx, chatID, target, target.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("failed to delete shifts of %s: %w", target.Format(time.DateOnly), err)
	}

	if deleted > 0 {
		c.logger.Infow("existing shifts deleted before new poll", "chatID", chatID, "shiftDate", target.Format(time.DateOnly), "deleted", deleted)
	}
	return nil
}

func (c *pollCommand) checkToday(ctx context.Context, request Request) ([]tgbotapi.Chattable, error) {
	start, end := shifts.DayRange(c.clock.Now(), c.location)

	records, err := c.workShiftRepository.GetManyByChatAndDateRange(ctx, request.ChatID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's shifts: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, "• "+record.Mention())
	}

	text := fmt.Sprintf("📋 Сегодня смена уже записана:\n\n%s\n\nЕсли нужно изменить состав, используйте команду /poll для создания опроса на завтра.",
		strings.Join(lines, "\n"))
	return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, text)}, nil
}
