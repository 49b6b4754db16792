package commands

import (
	"context"
	"errors"

	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/tg_bot/extension"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type voteAction struct {
	purpose   models.PollPurpose
	choice    polls.Choice
	ack       string
	forbidden string
}

var voteActions = map[string]voteAction{
	polls.ActionShiftYes: {models.PollPurposeShift, polls.ChoiceGoing, "Ваш ответ учтён: Выхожу", "Опрос только для Сотрудников"},
	polls.ActionShiftNo:  {models.PollPurposeShift, polls.ChoiceNotGoing, "Ваш ответ учтён: Не выхожу", "Опрос только для Сотрудников"},
	polls.ActionSyncYes:  {models.PollPurposeSync, polls.ChoiceGoing, "Ваш ответ учтён: На смене", "Эта опция только для сотрудников"},
}

type voteCommand struct {
	engine         polls.Engine
	userRepository repositories.UserRepository
	logger         *zap.SugaredLogger
}

func NewVoteCommand(engine polls.Engine, userRepository repositories.UserRepository, logger *zap.SugaredLogger) Command {
	return &voteCommand{
		engine:         engine,
		userRepository: userRepository,
		logger:         logger,
	}
}

func (c *voteCommand) CanHandle(command string) bool {
	_, ok := voteActions[command]
	return ok
}

func (c *voteCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	action := voteActions[request.Command]
	if request.CallbackID == "" {
		return nil
	}

	if !extension.IsEmployee(request.User) {
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, action.forbidden)}
	}

	key := polls.Key{ChatID: request.TargetChatID(), Purpose: action.purpose}
	voterID := extension.VoterID(request.Sender)

	_, err := c.vote(ctx, key, voterID, action.choice)
	switch {
	case errors.Is(err, polls.ErrPollNotFound):
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, "Опрос не найден")}
	case errors.Is(err, polls.ErrPollClosed):
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, "Опрос завершён, голосование недоступно")}
	case err != nil:
		c.logger.Errorw("failed to vote", "error", err, "key", key.String(), "voterID", voterID)
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, "Произошла ошибка, повторите попытку еще раз")}
	}

	messages := []tgbotapi.Chattable{extension.Answer(request.CallbackID, action.ack)}

	total, err := c.userRepository.CountByRole(ctx, models.UserRoleEmployee)
	if err != nil {
		c.logger.Errorw("failed to count employees", "error", err)
		return messages
	}

	outcome, err := c.engine.CheckQuorum(ctx, key, total)
	if err != nil && !errors.Is(err, polls.ErrPollClosed) {
		c.logger.Errorw("failed to check quorum", "error", err, "key", key.String())
		return messages
	}

	if outcome == polls.QuorumRefused {
		messages = append(messages, tgbotapi.NewMessage(key.ChatID, polls.RefusedNotice(key.Purpose)))
	}

	return messages
}

// vote falls back to the stored poll when the process has not seen it yet.
func (c *voteCommand) vote(ctx context.Context, key polls.Key, voterID string, choice polls.Choice) (polls.Poll, error) {
	poll, err := c.engine.Vote(ctx, key, voterID, choice)
	if !errors.Is(err, polls.ErrPollNotFound) {
		return poll, err
	}

	if _, err := c.engine.Restore(ctx, key); err != nil {
		return polls.Poll{}, err
	}

	return c.engine.Vote(ctx, key, voterID, choice)
}
