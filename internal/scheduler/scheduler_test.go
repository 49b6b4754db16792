package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	mock_repositories "shift_coordination_system/internal/db/repositories/mocks"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/polls/pollstest"
	"shift_coordination_system/internal/shifts"

	"github.com/go-pg/pg/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const chatID int64 = 100

// 20:05 in Novosibirsk.
var now = time.Date(2024, 3, 1, 13, 5, 0, 0, time.UTC)

type fixture struct {
	clock            *clock.Fake
	polls            *pollstest.PollRepository
	messenger        *pollstest.Messenger
	chats            *mock_repositories.MockChatRepository
	users            *mock_repositories.MockUserRepository
	workShifts       *mock_repositories.MockWorkShiftRepository
	materializations *mock_repositories.MockMaterializationRepository
	engine           polls.Engine
	scheduler        *scheduler
}

func newFixture(t *testing.T, rows ...*models.ShiftPoll) *fixture {
	ctrl := gomock.NewController(t)
	logger := zap.NewNop().Sugar()

	f := &fixture{
		clock:            clock.NewFake(now),
		polls:            pollstest.NewPollRepository(rows...),
		messenger:        pollstest.NewMessenger(),
		chats:            mock_repositories.NewMockChatRepository(ctrl),
		users:            mock_repositories.NewMockUserRepository(ctrl),
		workShifts:       mock_repositories.NewMockWorkShiftRepository(ctrl),
		materializations: mock_repositories.NewMockMaterializationRepository(ctrl),
	}

	materializer := shifts.NewMaterializer(f.users, f.workShifts, f.materializations, configs.Shifts{BaseRate: 1400, Comment: "auto"}, logger)
	policies := polls.PoliciesFromConfig(configs.Polls{
		ShiftDeadline:      30 * time.Minute,
		ShiftExtension:     15 * time.Minute,
		ShiftMaxExtensions: 1,
		SyncDeadline:       10 * time.Minute,
		SyncExtension:      10 * time.Minute,
	})
	f.engine = polls.NewEngine(f.polls, f.messenger, materializer, policies, f.clock, logger)
	t.Cleanup(f.engine.Stop)

	s, err := NewScheduler(
		f.engine,
		f.polls,
		f.chats,
		f.workShifts,
		f.users,
		f.messenger,
		configs.Scheduler{
			Enabled:           true,
			Timezone:          "Asia/Novosibirsk",
			OpenReminderCron:  "50 8 * * *",
			ShiftPollCron:     "0 20 * * *",
			CloseReminderCron: "55 20 * * *",
		},
		models.ChatEnvironmentProd,
		f.clock,
		logger,
	)
	require.NoError(t, err)
	f.scheduler = s.(*scheduler)
	t.Cleanup(f.scheduler.Stop)

	return f
}

func activeChat(id int64) *models.Chat {
	return &models.Chat{ChatID: id, Environment: models.ChatEnvironmentProd, IsActive: true}
}

func scheduledRow(messageID int, expiresAt *time.Time, going ...string) *models.ShiftPoll {
	if going == nil {
		going = []string{}
	}

	return &models.ShiftPoll{
		ChatID:    chatID,
		MessageID: messageID,
		Purpose:   models.PollPurposeShift,
		Going:     going,
		NotGoing:  []string{},
		ExpiresAt: expiresAt,
		Source:    models.PollSourceScheduler,
		StartedAt: now.Add(-40 * time.Minute),
	}
}

func at(t time.Time) *time.Time {
	return &t
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := NewScheduler(nil, nil, nil, nil, nil, nil, configs.Scheduler{Timezone: "Mars/Olympus"}, models.ChatEnvironmentProd, clock.New(), zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestScheduler_ArmRecurring(t *testing.T) {
	f := newFixture(t)

	err := f.scheduler.ArmRecurring("nightly", "0 20 * * *", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	jobs := f.scheduler.cron.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"nightly"}, jobs[0].Tags())
}

func TestScheduler_ArmRecurring_InvalidSpec(t *testing.T) {
	f := newFixture(t)

	err := f.scheduler.ArmRecurring("broken", "61 25 * * *", func(ctx context.Context) error { return nil })

	assert.Error(t, err)
	assert.Empty(t, f.scheduler.cron.Jobs())
}

func TestScheduler_Run_RecoversFromPanic(t *testing.T) {
	f := newFixture(t)

	calls := 0
	callback := func(ctx context.Context) error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return errors.New("still failing")
	}

	assert.NotPanics(t, func() { f.scheduler.run("job", callback) })
	assert.NotPanics(t, func() { f.scheduler.run("job", callback) })
	assert.Equal(t, 2, calls)
}

func TestScheduler_ReconcileOnStart_ClosesExpiredPoll(t *testing.T) {
	f := newFixture(t, scheduledRow(55, at(now.Add(-10*time.Minute)), "alice"))

	alice := &models.User{Login: "alice", TelegramID: 42, Role: models.UserRoleEmployee, IsActive: true}

	f.chats.EXPECT().GetOneByChatID(gomock.Any(), chatID).Return(activeChat(chatID), nil)
	f.materializations.EXPECT().Claim(gomock.Any(), gomock.Any()).Return(true, nil)
	f.users.EXPECT().GetOneByLoginOrTelegramID(gomock.Any(), "alice").Return(alice, nil)
	f.workShifts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, request *models.WorkShift) (*models.WorkShift, error) {
			assert.Equal(t, int64(42), request.TelegramID)
			assert.Equal(t, 1.0, request.Shift)
			assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), request.ShiftDate)
			return request, nil
		},
	).Times(1)

	require.NoError(t, f.scheduler.ReconcileOnStart(context.Background()))

	row, ok := f.polls.Row(chatID, 55)
	require.True(t, ok)
	assert.True(t, row.Closed)

	poll, ok := f.engine.Get(polls.Key{ChatID: chatID, Purpose: models.PollPurposeShift})
	require.True(t, ok)
	assert.True(t, poll.Closed)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestScheduler_ReconcileOnStart_ArmsRemainingDeadline(t *testing.T) {
	f := newFixture(t, scheduledRow(55, at(now.Add(5*time.Minute))))

	f.chats.EXPECT().GetOneByChatID(gomock.Any(), chatID).Return(activeChat(chatID), nil)

	require.NoError(t, f.scheduler.ReconcileOnStart(context.Background()))

	poll, ok := f.engine.Get(polls.Key{ChatID: chatID, Purpose: models.PollPurposeShift})
	require.True(t, ok)
	assert.False(t, poll.Closed)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestScheduler_ReconcileOnStart_SkipsReplacedPoll(t *testing.T) {
	replaced := scheduledRow(55, at(now.Add(-10*time.Minute)), "alice")
	current := scheduledRow(56, at(now.Add(20*time.Minute)))
	current.StartedAt = now.Add(-10 * time.Minute)

	f := newFixture(t, replaced, current)

	f.chats.EXPECT().GetOneByChatID(gomock.Any(), chatID).Return(activeChat(chatID), nil).Times(1)

	require.NoError(t, f.scheduler.ReconcileOnStart(context.Background()))

	_, ok := f.polls.Row(chatID, 55)
	assert.False(t, ok)

	poll, ok := f.engine.Get(polls.Key{ChatID: chatID, Purpose: models.PollPurposeShift})
	require.True(t, ok)
	assert.Equal(t, 56, poll.MessageID)
	assert.False(t, poll.Closed)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestScheduler_ReconcileOnStart_DropsPollsOfInactiveChats(t *testing.T) {
	missing := scheduledRow(55, at(now.Add(5*time.Minute)))
	inactive := scheduledRow(56, at(now.Add(5*time.Minute)))
	inactive.ChatID = 200

	f := newFixture(t, missing, inactive)

	f.chats.EXPECT().GetOneByChatID(gomock.Any(), chatID).Return(nil, pg.ErrNoRows)
	f.chats.EXPECT().GetOneByChatID(gomock.Any(), int64(200)).Return(&models.Chat{ChatID: 200, IsActive: false}, nil)

	require.NoError(t, f.scheduler.ReconcileOnStart(context.Background()))

	assert.Equal(t, 0, f.polls.Len())
	assert.Equal(t, 0, f.clock.Pending())
}

func TestScheduler_ReconcileOnStart_RunsOnce(t *testing.T) {
	f := newFixture(t, scheduledRow(55, at(now.Add(5*time.Minute))))

	f.chats.EXPECT().GetOneByChatID(gomock.Any(), chatID).Return(activeChat(chatID), nil).Times(1)

	require.NoError(t, f.scheduler.ReconcileOnStart(context.Background()))
	require.NoError(t, f.scheduler.ReconcileOnStart(context.Background()))
}

func TestScheduler_ReconcileOnStart_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.polls.SetFailing(true)

	err := f.scheduler.ReconcileOnStart(context.Background())

	assert.ErrorIs(t, err, pollstest.ErrStoreDown)
}

func TestScheduler_ReconcileOnStart_ChatLookupFailure(t *testing.T) {
	f := newFixture(t, scheduledRow(55, at(now.Add(5*time.Minute))))

	f.chats.EXPECT().GetOneByChatID(gomock.Any(), chatID).Return(nil, errors.New("connection reset"))

	err := f.scheduler.ReconcileOnStart(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, f.polls.Len())
}

func TestScheduler_SendPolls(t *testing.T) {
	f := newFixture(t)

	f.chats.EXPECT().GetManyActive(gomock.Any(), models.ChatEnvironmentProd).Return([]*models.Chat{activeChat(chatID), activeChat(200)}, nil)

	require.NoError(t, f.scheduler.SendPolls(context.Background()))

	for _, id := range []int64{chatID, 200} {
		poll, ok := f.engine.Get(polls.Key{ChatID: id, Purpose: models.PollPurposeShift})
		require.True(t, ok)
		assert.Equal(t, models.PollSourceScheduler, poll.Source)
	}
	assert.Len(t, f.messenger.SentTexts(), 2)
}

func TestScheduler_SendPolls_MessagingFailure(t *testing.T) {
	f := newFixture(t)
	f.messenger.SetFailing(true)

	f.chats.EXPECT().GetManyActive(gomock.Any(), models.ChatEnvironmentProd).Return([]*models.Chat{activeChat(chatID)}, nil)

	err := f.scheduler.SendPolls(context.Background())

	assert.ErrorIs(t, err, polls.ErrMessagingFailed)
	assert.Equal(t, 0, f.polls.Len())
}

func TestScheduler_SendPolls_NoChats(t *testing.T) {
	f := newFixture(t)

	f.chats.EXPECT().GetManyActive(gomock.Any(), models.ChatEnvironmentProd).Return(nil, nil)

	require.NoError(t, f.scheduler.SendPolls(context.Background()))
	assert.Empty(t, f.messenger.SentTexts())
}

func TestScheduler_Remind_Open(t *testing.T) {
	f := newFixture(t)

	dayStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []*models.WorkShift{
		{TelegramID: 42, Login: "alice"},
		{TelegramID: 43, Login: "bob", IsOpened: true},
		{TelegramID: 44, Login: "carol"},
	}

	f.chats.EXPECT().GetManyActive(gomock.Any(), models.ChatEnvironmentProd).Return([]*models.Chat{activeChat(chatID)}, nil)
	f.workShifts.EXPECT().GetManyByChatAndDateRange(gomock.Any(), chatID, dayStart, dayStart.AddDate(0, 0, 1)).Return(records, nil)
	f.users.EXPECT().GetOneByTelegramID(gomock.Any(), int64(42)).Return(&models.User{FirstName: "Alice", Login: "alice"}, nil)
	f.users.EXPECT().GetOneByTelegramID(gomock.Any(), int64(44)).Return(nil, pg.ErrNoRows)

	require.NoError(t, f.scheduler.Remind(context.Background(), ReminderOpen))

	texts := f.messenger.SentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, "⏰ Напоминание: Откройте смену на сегодня!\n"+
		"• Alice (@alice) — не забудьте открыть смену командой /openshift\n"+
		"• @carol — не забудьте открыть смену командой /openshift", texts[0])
}

func TestScheduler_Remind_Close(t *testing.T) {
	f := newFixture(t)

	records := []*models.WorkShift{
		{TelegramID: 42, Login: "alice"},
		{TelegramID: 43, Login: "bob", IsOpened: true},
		{TelegramID: 44, Login: "carol", IsOpened: true, ItemsIssued: 12},
	}

	f.chats.EXPECT().GetManyActive(gomock.Any(), models.ChatEnvironmentProd).Return([]*models.Chat{activeChat(chatID)}, nil)
	f.workShifts.EXPECT().GetManyByChatAndDateRange(gomock.Any(), chatID, gomock.Any(), gomock.Any()).Return(records, nil)
	f.users.EXPECT().GetOneByTelegramID(gomock.Any(), int64(43)).Return(&models.User{Login: "bob"}, nil)

	require.NoError(t, f.scheduler.Remind(context.Background(), ReminderClose))

	texts := f.messenger.SentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, "⏰ Напоминание: Закройте смену на сегодня!\n"+
		"• @bob — не забудьте закрыть смену командой /closeshift", texts[0])
}

func TestScheduler_Remind_NothingToRemind(t *testing.T) {
	f := newFixture(t)

	f.chats.EXPECT().GetManyActive(gomock.Any(), models.ChatEnvironmentProd).Return([]*models.Chat{activeChat(chatID)}, nil)
	f.workShifts.EXPECT().GetManyByChatAndDateRange(gomock.Any(), chatID, gomock.Any(), gomock.Any()).Return(nil, nil)

	require.NoError(t, f.scheduler.Remind(context.Background(), ReminderOpen))
	assert.Empty(t, f.messenger.SentTexts())
}

func TestScheduler_Start_ArmsJobs(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.scheduler.Start(context.Background()))

	tags := make([]string, 0, 3)
	for _, job := range f.scheduler.cron.Jobs() {
		tags = append(tags, job.Tags()...)
	}
	assert.ElementsMatch(t, []string{jobOpenReminder, jobShiftPoll, jobCloseReminder}, tags)
	assert.True(t, f.scheduler.cron.IsRunning())
}

func TestScheduler_Start_Disabled(t *testing.T) {
	f := newFixture(t)
	f.scheduler.config.Enabled = false

	require.NoError(t, f.scheduler.Start(context.Background()))

	assert.Empty(t, f.scheduler.cron.Jobs())
}
