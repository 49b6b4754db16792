package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"shift_coordination_system/internal"
	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/tg_bot/extension"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const closeShiftCommandName = "closeshift"

type closureKey struct {
	chatID     int64
	telegramID int64
}

type closeShiftCommand struct {
	workShiftRepository repositories.WorkShiftRepository
	clock               clock.Clock
	location            *time.Location
	logger              *zap.SugaredLogger

	mu      sync.Mutex
	pending map[closureKey]models.WorkShift
}

// NewCloseShiftCommand records the items issued during today's shift, either
// from the command arguments or from the sender's next message.
func NewCloseShiftCommand(
	workShiftRepository repositories.WorkShiftRepository,
	clk clock.Clock,
	location *time.Location,
	logger *zap.SugaredLogger,
) TextCommand {
	return &closeShiftCommand{
		workShiftRepository: workShiftRepository,
		clock:               clk,
		location:            location,
		logger:              logger,
		pending:             make(map[closureKey]models.WorkShift),
	}
}

func (c *closeShiftCommand) CanHandle(command string) bool {
	return command == closeShiftCommandName
}

func (c *closeShiftCommand) Handle(ctx context.Context, request Request) []tgbotapi.Chattable {
	if request.User == nil {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Вы не найдены в базе данных.")}
	}

	record, err := todaysShift(ctx, c.workShiftRepository, request, c.clock.Now(), c.location)
	if err != nil {
		c.logger.Errorw("failed to get today's shift", "error", err, "chatID", request.ChatID, "userID", request.Sender.ID)
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "Ошибка при закрытии смены.")}
	}

	if record == nil {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, "У вас нет смены на сегодня.")}
	}

	if record.ItemsIssued > 0 {
		return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender,
			fmt.Sprintf("Ваша смена уже закрыта. Выдано товаров: %d", record.ItemsIssued))}
	}

	if request.Arguments != "" {
		return []tgbotapi.Chattable{c.close(ctx, request, *record, request.Arguments)}
	}

	c.mu.Lock()
	c.pending[closureKey{request.ChatID, request.Sender.ID}] = *record
	c.mu.Unlock()

	text := fmt.Sprintf("📋 Закрытие смены\n\nДата смены: %s\nБазовая ставка: %g\nКоэффициент: %g\n\nВведите количество выданных товаров:",
		internal.Format(record.ShiftDate), record.BaseRate, record.Shift)
	return []tgbotapi.Chattable{extension.Reply(request.ChatID, request.Sender, text)}
}

// HandleText consumes the items count of a closure started by /closeshift.
func (c *closeShiftCommand) HandleText(ctx context.Context, request Request) ([]tgbotapi.Chattable, bool) {
	key := closureKey{request.ChatID, request.Sender.ID}

	c.mu.Lock()
	record, ok := c.pending[key]
	c.mu.Unlock()

	if !ok {
		return nil, false
	}

	return []tgbotapi.Chattable{c.close(ctx, request, record, request.Arguments)}, true
}

// ForgetChat drops the closures awaiting input in chatID.
func (c *closeShiftCommand) ForgetChat(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.pending {
		if key.chatID == chatID {
			delete(c.pending, key)
		}
	}
}

func (c *closeShiftCommand) close(ctx context.Context, request Request, record models.WorkShift, input string) tgbotapi.Chattable {
	key := closureKey{request.ChatID, request.Sender.ID}

	items, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || items < 0 {
		return extension.Reply(request.ChatID, request.Sender,
			"❌ Неверное число. Введите корректное количество выданных товаров (целое число >= 0):")
	}

	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()

	if err := c.workShiftRepository.UpdateItemsIssued(ctx, record.ID, items); err != nil {
		c.logger.Errorw("failed to close shift", "error", err, "workShiftID", record.ID)
		return extension.Reply(request.ChatID, request.Sender, "Ошибка при закрытии смены.")
	}

	total := record.BaseRate*record.Shift + float64(items)
	c.logger.Infow("shift closed", "workShiftID", record.ID, "items", items)

	return extension.Reply(request.ChatID, request.Sender, fmt.Sprintf(
		"✅ Смена закрыта!\n\n📦 Выдано товаров: %d\n💰 Базовая ставка: %g\n📊 Коэффициент: %g\n💵 Итого: %.2f",
		items, record.BaseRate, record.Shift, total))
}
