package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/db/repositories"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/services"
	"shift_coordination_system/internal/shifts"

	"github.com/go-co-op/gocron"
	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Reminder string

const (
	ReminderOpen  Reminder = "open"
	ReminderClose Reminder = "close"
)

const (
	jobOpenReminder  = "open_reminder"
	jobShiftPoll     = "shift_poll"
	jobCloseReminder = "close_reminder"
)

type scheduler struct {
	cron                *gocron.Scheduler
	engine              polls.Engine
	pollRepository      repositories.PollRepository
	chatRepository      repositories.ChatRepository
	workShiftRepository repositories.WorkShiftRepository
	userRepository      repositories.UserRepository
	messenger           services.MessagingService
	config              configs.Scheduler
	environment         models.ChatEnvironment
	location            *time.Location
	clock               clock.Clock
	logger              *zap.SugaredLogger

	ctx           context.Context
	reconcileOnce sync.Once
	reconcileErr  error
}

type Scheduler interface {
	// ArmRecurring registers callback on a cron spec evaluated in the
	// scheduler timezone. Callbacks run on their own goroutine; errors and
	// panics are logged and the job stays registered.
	ArmRecurring(name, spec string, callback func(ctx context.Context) error) error
	// ReconcileOnStart adopts the scheduler-created polls left open by the
	// previous process. Only the first call does any work.
	ReconcileOnStart(ctx context.Context) error
	SendPolls(ctx context.Context) error
	SendPoll(ctx context.Context, chat *models.Chat) error
	Remind(ctx context.Context, kind Reminder) error
	Start(ctx context.Context) error
	Stop()
}

func NewScheduler(
	engine polls.Engine,
	pollRepository repositories.PollRepository,
	chatRepository repositories.ChatRepository,
	workShiftRepository repositories.WorkShiftRepository,
	userRepository repositories.UserRepository,
	messenger services.MessagingService,
	config configs.Scheduler,
	environment models.ChatEnvironment,
	clk clock.Clock,
	logger *zap.SugaredLogger,
) (Scheduler, error) {
	location, err := config.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone: %w", err)
	}

	cronScheduler := gocron.NewScheduler(location)
	cronScheduler.TagsUnique()

	return &scheduler{
		cron:                cronScheduler,
		engine:              engine,
		pollRepository:      pollRepository,
		chatRepository:      chatRepository,
		workShiftRepository: workShiftRepository,
		userRepository:      userRepository,
		messenger:           messenger,
		config:              config,
		environment:         environment,
		location:            location,
		clock:               clk,
		logger:              logger,
		ctx:                 context.Background(),
	}, nil
}

func (s *scheduler) ArmRecurring(name, spec string, callback func(ctx context.Context) error) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for job %s: %w", spec, name, err)
	}

	_, err = s.cron.Cron(spec).Tag(name).Do(func() {
		s.run(name, callback)
	})
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	s.logger.Infow("recurring job armed",
		"job", name,
		"spec", spec,
		"timezone", s.location.String(),
		"nextRun", schedule.Next(s.clock.Now().In(s.location)),
	)
	return nil
}

func (s *scheduler) run(name string, callback func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("recovered from panic in scheduled job", "job", name, "panic", r)
		}
	}()

	s.logger.Infow("scheduled job triggered", "job", name, "time", s.clock.Now().In(s.location))

	if err := callback(s.ctx); err != nil {
		s.logger.Errorw("scheduled job failed", "job", name, "error", err)
	}
}

func (s *scheduler) ReconcileOnStart(ctx context.Context) error {
	s.reconcileOnce.Do(func() {
		s.reconcileErr = s.reconcile(ctx)
	})
	return s.reconcileErr
}

func (s *scheduler) reconcile(ctx context.Context) error {
	rows, err := s.pollRepository.GetManyActiveBySource(ctx, models.PollSourceScheduler)
	if err != nil {
		s.logger.Errorw("failed to load scheduled polls", "error", err)
		return fmt.Errorf("failed to load scheduled polls: %w", err)
	}

	if len(rows) == 0 {
		s.logger.Info("no scheduled polls to restore")
		return nil
	}
	s.logger.Infow("restoring scheduled polls", "count", len(rows))

	latest := latestRows(rows)

	var result error
	for _, row := range rows {
		if latest[polls.Key{ChatID: row.ChatID, Purpose: row.Purpose}] != row {
			result = multierr.Append(result, s.dropSuperseded(ctx, row))
			continue
		}
		result = multierr.Append(result, s.reconcileRow(ctx, row))
	}

	if result != nil {
		s.logger.Warnw("scheduled polls restored with errors", "error", result)
	}
	return result
}

// latestRows picks the newest active row of every poll key.
func latestRows(rows []*models.ShiftPoll) map[polls.Key]*models.ShiftPoll {
	latest := make(map[polls.Key]*models.ShiftPoll, len(rows))
	for _, row := range rows {
		key := polls.Key{ChatID: row.ChatID, Purpose: row.Purpose}
		current, ok := latest[key]
		if !ok || row.StartedAt.After(current.StartedAt) ||
			(row.StartedAt.Equal(current.StartedAt) && row.MessageID > current.MessageID) {
			latest[key] = row
		}
	}
	return latest
}

func (s *scheduler) dropSuperseded(ctx context.Context, row *models.ShiftPoll) error {
	s.logger.Infow("dropping superseded poll", "chatID", row.ChatID, "messageID", row.MessageID, "purpose", row.Purpose)
	if err := s.pollRepository.Delete(ctx, row.ChatID, row.MessageID); err != nil {
		return fmt.Errorf("failed to delete superseded poll of chat %d: %w", row.ChatID, err)
	}
	return nil
}

func (s *scheduler) reconcileRow(ctx context.Context, row *models.ShiftPoll) error {
	chat, err := s.chatRepository.GetOneByChatID(ctx, row.ChatID)
	if err != nil && !repositories.IsNotFound(err) {
		return fmt.Errorf("failed to get chat %d: %w", row.ChatID, err)
	}

	if err != nil || chat == nil || !chat.IsActive {
		s.logger.Infow("dropping poll of inactive chat", "chatID", row.ChatID, "messageID", row.MessageID)
		if err := s.pollRepository.Delete(ctx, row.ChatID, row.MessageID); err != nil {
			return fmt.Errorf("failed to delete poll of chat %d: %w", row.ChatID, err)
		}
		return nil
	}

	if chat.Environment != s.environment {
		return nil
	}

	poll, err := s.engine.Adopt(ctx, polls.FromModel(row))
	if err != nil {
		return fmt.Errorf("failed to restore poll of chat %d: %w", row.ChatID, err)
	}

	s.logger.Infow("scheduled poll restored",
		"chatID", poll.ChatID,
		"messageID", poll.MessageID,
		"closed", poll.Closed,
		"expiresAt", poll.ExpiresAt,
	)
	return nil
}

func (s *scheduler) SendPolls(ctx context.Context) error {
	chats, err := s.chatRepository.GetManyActive(ctx, s.environment)
	if err != nil {
		return fmt.Errorf("failed to get chats: %w", err)
	}

	if len(chats) == 0 {
		s.logger.Warn("no active chats, skipping scheduled poll")
		return nil
	}

	var result error
	for _, chat := range chats {
		result = multierr.Append(result, s.SendPoll(ctx, chat))
	}
	return result
}

func (s *scheduler) SendPoll(ctx context.Context, chat *models.Chat) error {
	poll, err := s.engine.Create(ctx, chat.ChatID, models.PollPurposeShift, models.PollSourceScheduler)
	if err != nil {
		s.logger.Errorw("failed to send scheduled poll", "error", err, "chatID", chat.ChatID)
		return fmt.Errorf("failed to send poll to chat %d: %w", chat.ChatID, err)
	}

	s.logger.Infow("scheduled poll sent", "chatID", chat.ChatID, "messageID", poll.MessageID)
	return nil
}

func (s *scheduler) Remind(ctx context.Context, kind Reminder) error {
	chats, err := s.chatRepository.GetManyActive(ctx, s.environment)
	if err != nil {
		return fmt.Errorf("failed to get chats: %w", err)
	}

	start, end := shifts.DayRange(s.clock.Now(), s.location)

	var result error
	for _, chat := range chats {
		records, err := s.workShiftRepository.GetManyByChatAndDateRange(ctx, chat.ChatID, start, end)
		if err != nil {
			result = multierr.Append(result, fmt.Errorf("failed to get shifts of chat %d: %w", chat.ChatID, err))
			continue
		}

		lines := s.reminderLines(ctx, kind, records)
		if len(lines) == 0 {
			continue
		}

		text := reminderHeader(kind) + "\n" + strings.Join(lines, "\n")
		if _, err := s.messenger.SendMessage(ctx, chat.ChatID, text, nil); err != nil {
			result = multierr.Append(result, fmt.Errorf("failed to send %s reminder to chat %d: %w", kind, chat.ChatID, err))
			continue
		}

		s.logger.Infow("reminder sent", "kind", kind, "chatID", chat.ChatID, "lines", len(lines))
	}

	return result
}

func (s *scheduler) reminderLines(ctx context.Context, kind Reminder, records []*models.WorkShift) []string {
	lines := make([]string, 0, len(records))

	for _, record := range records {
		switch {
		case kind == ReminderOpen && !record.IsOpened:
			lines = append(lines, fmt.Sprintf("• %s — не забудьте открыть смену командой /openshift", s.displayName(ctx, record)))
		case kind == ReminderClose && record.IsOpened && record.ItemsIssued == 0:
			lines = append(lines, fmt.Sprintf("• %s — не забудьте закрыть смену командой /closeshift", s.displayName(ctx, record)))
		}
	}

	return lines
}

func (s *scheduler) displayName(ctx context.Context, record *models.WorkShift) string {
	fallback := record.Mention()

	user, err := s.userRepository.GetOneByTelegramID(ctx, record.TelegramID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			s.logger.Warnw("failed to get user", "error", err, "telegramID", record.TelegramID)
		}
		return fallback
	}

	if user == nil {
		return fallback
	}
	return user.DisplayName()
}

func reminderHeader(kind Reminder) string {
	if kind == ReminderClose {
		return "⏰ Напоминание: Закройте смену на сегодня!"
	}
	return "⏰ Напоминание: Откройте смену на сегодня!"
}

func (s *scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if err := s.ReconcileOnStart(ctx); err != nil {
		s.logger.Warnw("reconciliation finished with errors", "error", err)
	}

	if !s.config.Enabled {
		s.logger.Info("scheduler disabled, recurring jobs not armed")
		return nil
	}

	jobs := []struct {
		name     string
		spec     string
		callback func(ctx context.Context) error
	}{
		{jobOpenReminder, s.config.OpenReminderCron, func(ctx context.Context) error { return s.Remind(ctx, ReminderOpen) }},
		{jobShiftPoll, s.config.ShiftPollCron, s.SendPolls},
		{jobCloseReminder, s.config.CloseReminderCron, func(ctx context.Context) error { return s.Remind(ctx, ReminderClose) }},
	}

	for _, job := range jobs {
		if err := s.ArmRecurring(job.name, job.spec, job.callback); err != nil {
			return err
		}
	}

	s.cron.StartAsync()
	s.logger.Infow("scheduler started", "timezone", s.location.String())
	return nil
}

func (s *scheduler) Stop() {
	s.cron.Stop()
}
