package commands

import (
	"context"
	"errors"

	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/services"
	"shift_coordination_system/internal/tg_bot/extension"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type resultsAction struct {
	purpose   models.PollPurpose
	close     bool
	report    bool
	forbidden string
}

var resultsActions = map[string]resultsAction{
	polls.ActionShiftResults: {models.PollPurposeShift, true, true, "Только для Менеджеров и выше или администраторов группы"},
	polls.ActionSyncResults:  {models.PollPurposeSync, false, true, "У вас нет прав для просмотра результатов"},
	polls.ActionSyncClose:    {models.PollPurposeSync, true, false, "У вас нет прав для завершения опроса"},
}

type resultsCommand struct {
	engine     polls.Engine
	authorizer authorizer
	logger     *zap.SugaredLogger
}

func NewResultsCommand(engine polls.Engine, members services.ChatMemberService, logger *zap.SugaredLogger) Command {
	return &resultsCommand{
		engine:     engine,
		authorizer: authorizer{members: members, logger: logger},
		logger:     logger,
	}
}

func (c *resultsCommand) CanHandle(command string) bool {
	_, ok := resultsActions[command]
	return ok
}

func (c *resultsCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	action := resultsActions[request.Command]
	if request.CallbackID == "" {
		return nil
	}

	if !c.authorizer.allowed(ctx, request, models.UserRoleManager) {
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, action.forbidden)}
	}

	key := polls.Key{ChatID: request.TargetChatID(), Purpose: action.purpose}

	var (
		poll polls.Poll
		err  error
	)
	if action.close {
		poll, err = c.forceClose(ctx, key)
	} else {
		poll, err = c.engine.Restore(ctx, key)
	}

	switch {
	case errors.Is(err, polls.ErrPollNotFound):
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, "Опрос не найден")}
	case errors.Is(err, polls.ErrQuorumRefused):
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, refusedAlert(key.Purpose))}
	case errors.Is(err, polls.ErrPollClosed):
		if !action.report {
			return []tgbotapi.Chattable{extension.Answer(request.CallbackID, "Опрос уже завершён")}
		}
	case err != nil:
		c.logger.Errorw("failed to get poll results", "error", err, "key", key.String())
		return []tgbotapi.Chattable{extension.Alert(request.CallbackID, "Произошла ошибка, повторите попытку еще раз")}
	}

	if !action.report {
		return []tgbotapi.Chattable{extension.Answer(request.CallbackID, "Опрос завершён и смены созданы")}
	}

	return []tgbotapi.Chattable{
		extension.Answer(request.CallbackID, ""),
		tgbotapi.NewMessage(key.ChatID, polls.ResultsText(poll)),
	}
}

func (c *resultsCommand) forceClose(ctx context.Context, key polls.Key) (polls.Poll, error) {
	poll, err := c.engine.ForceClose(ctx, key)
	if !errors.Is(err, polls.ErrPollNotFound) {
		return poll, err
	}

	if _, err := c.engine.Restore(ctx, key); err != nil {
		return polls.Poll{}, err
	}

	return c.engine.ForceClose(ctx, key)
}

func refusedAlert(purpose models.PollPurpose) string {
	if purpose == models.PollPurposeSync {
		return "Никто не отметился на смене. Опрос остаётся открытым."
	}
	return "Никто не выходит. Опрос остаётся открытым. Выберите хотя бы одного сотрудника."
}
