package polls_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"shift_coordination_system/configs"
	"shift_coordination_system/internal/clock"
	"shift_coordination_system/internal/db/models"
	"shift_coordination_system/internal/polls"
	"shift_coordination_system/internal/polls/pollstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chatID int64 = 100

var (
	start    = time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	shiftKey = polls.Key{ChatID: chatID, Purpose: models.PollPurposeShift}
)

type fixture struct {
	clock        *clock.Fake
	repository   *pollstest.PollRepository
	messenger    *pollstest.Messenger
	materializer *pollstest.Materializer
	engine       polls.Engine
}

func testPolicies() polls.Policies {
	return polls.PoliciesFromConfig(configs.Polls{
		ShiftDeadline:      30 * time.Minute,
		ShiftExtension:     15 * time.Minute,
		ShiftMaxExtensions: 1,
		SyncDeadline:       10 * time.Minute,
		SyncExtension:      10 * time.Minute,
		SyncMaxExtensions:  0,
	})
}

func newFixture(rows ...*models.ShiftPoll) *fixture {
	f := &fixture{
		clock:        clock.NewFake(start),
		repository:   pollstest.NewPollRepository(rows...),
		messenger:    pollstest.NewMessenger(),
		materializer: &pollstest.Materializer{},
	}
	f.engine = polls.NewEngine(f.repository, f.messenger, f.materializer, testPolicies(), f.clock, zap.NewNop().Sugar())
	return f
}

func (f *fixture) create(t *testing.T) polls.Poll {
	t.Helper()

	poll, err := f.engine.Create(context.Background(), chatID, models.PollPurposeShift, models.PollSourceManual)
	require.NoError(t, err)
	return poll
}

func (f *fixture) vote(t *testing.T, voterID string, choice polls.Choice) polls.Poll {
	t.Helper()

	poll, err := f.engine.Vote(context.Background(), shiftKey, voterID, choice)
	require.NoError(t, err)
	return poll
}

func TestEngine_Create_PersistsAndArmsDeadline(t *testing.T) {
	f := newFixture()

	poll := f.create(t)

	assert.Equal(t, 101, poll.MessageID)
	assert.False(t, poll.Closed)
	assert.Equal(t, 0, poll.ExtensionCount)
	require.NotNil(t, poll.ExpiresAt)
	assert.Equal(t, start.Add(30*time.Minute), *poll.ExpiresAt)
	assert.Equal(t, 1, f.clock.Pending())

	row, ok := f.repository.Row(chatID, poll.MessageID)
	require.True(t, ok)
	assert.Equal(t, models.PollPurposeShift, row.Purpose)
	assert.Equal(t, models.PollSourceManual, row.Source)
	assert.Empty(t, row.Going)
	require.NotNil(t, row.ExpiresAt)
	assert.Equal(t, start.Add(30*time.Minute), *row.ExpiresAt)

	require.Len(t, f.messenger.Sent, 1)
	assert.Contains(t, f.messenger.Sent[0].Text, "Кто завтра выходит на смену?")
	assert.Equal(t, "poll_yes:100", f.messenger.Sent[0].Keyboard[0][0].Data)
}

func TestEngine_Create_SupersedesPreviousPoll(t *testing.T) {
	f := newFixture()

	first := f.create(t)
	f.vote(t, "alice", polls.ChoiceGoing)
	second := f.create(t)

	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.Equal(t, 1, f.clock.Pending())

	_, ok := f.repository.Row(chatID, first.MessageID)
	assert.False(t, ok)
	assert.Equal(t, 1, f.repository.Len())

	current, ok := f.engine.Get(shiftKey)
	require.True(t, ok)
	assert.Equal(t, second.MessageID, current.MessageID)
	assert.Empty(t, current.Going)

	f.clock.Advance(30 * time.Minute)
	assert.Empty(t, f.materializer.Events())
}

func TestEngine_Create_FailsWithoutAnnouncement(t *testing.T) {
	f := newFixture()
	previous := f.create(t)
	f.messenger.SetFailing(true)

	_, err := f.engine.Create(context.Background(), chatID, models.PollPurposeShift, models.PollSourceScheduler)

	assert.ErrorIs(t, err, polls.ErrMessagingFailed)
	current, ok := f.engine.Get(shiftKey)
	require.True(t, ok)
	assert.Equal(t, previous.MessageID, current.MessageID)
	assert.Equal(t, 1, f.repository.Len())
}

func TestEngine_Create_UnknownPurpose(t *testing.T) {
	f := newFixture()

	_, err := f.engine.Create(context.Background(), chatID, models.PollPurpose("weekly"), models.PollSourceManual)

	assert.ErrorIs(t, err, polls.ErrUnknownPurpose)
	assert.Empty(t, f.messenger.Sent)
}

func TestEngine_Vote_KeepsSetsDisjoint(t *testing.T) {
	f := newFixture()
	f.create(t)

	steps := []struct {
		voter  string
		choice polls.Choice
	}{
		{"alice", polls.ChoiceGoing},
		{"bob", polls.ChoiceNotGoing},
		{"alice", polls.ChoiceNotGoing},
		{"carol", polls.ChoiceGoing},
		{"bob", polls.ChoiceGoing},
		{"alice", polls.ChoiceGoing},
		{"carol", polls.ChoiceNotGoing},
		{"carol", polls.ChoiceNotGoing},
	}

	for _, step := range steps {
		poll := f.vote(t, step.voter, step.choice)

		for _, voter := range poll.Going {
			assert.NotContains(t, poll.NotGoing, voter)
		}
		assert.Equal(t, len(poll.Going)+len(poll.NotGoing), uniqueVoters(poll))
	}

	poll, _ := f.engine.Get(shiftKey)
	assert.ElementsMatch(t, []string{"bob", "alice"}, poll.Going)
	assert.Equal(t, []string{"carol"}, poll.NotGoing)
}

func TestEngine_Vote_RepeatIsIdempotent(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	f.vote(t, "alice", polls.ChoiceGoing)
	upserts := f.repository.Upserts()
	edits := len(f.messenger.Edited)

	poll := f.vote(t, "alice", polls.ChoiceGoing)

	assert.Equal(t, []string{"alice"}, poll.Going)
	assert.Empty(t, poll.NotGoing)
	assert.Equal(t, upserts, f.repository.Upserts())
	assert.Equal(t, edits, len(f.messenger.Edited))

	row, _ := f.repository.Row(chatID, created.MessageID)
	assert.Equal(t, []string{"alice"}, row.Going)
}

func TestEngine_Vote_RerendersTally(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	f.vote(t, "alice", polls.ChoiceGoing)

	edit, ok := f.messenger.LastEdit()
	require.True(t, ok)
	assert.Equal(t, created.MessageID, edit.MessageID)
	assert.Contains(t, edit.Text, "✅ Выхожу (1): @alice")
	assert.NotEmpty(t, edit.Keyboard)
}

func TestEngine_Vote_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.engine.Vote(context.Background(), shiftKey, "alice", polls.ChoiceGoing)

	assert.ErrorIs(t, err, polls.ErrPollNotFound)
}

func TestEngine_Vote_AfterCloseDoesNotMutate(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.vote(t, "alice", polls.ChoiceGoing)

	_, err := f.engine.ForceClose(context.Background(), shiftKey)
	require.NoError(t, err)

	for _, choice := range []polls.Choice{polls.ChoiceGoing, polls.ChoiceNotGoing} {
		for _, voter := range []string{"alice", "bob"} {
			_, err := f.engine.Vote(context.Background(), shiftKey, voter, choice)
			assert.ErrorIs(t, err, polls.ErrPollClosed)
		}
	}

	poll, _ := f.engine.Get(shiftKey)
	assert.Equal(t, []string{"alice"}, poll.Going)
	assert.Empty(t, poll.NotGoing)
}

func TestEngine_CheckQuorum_NeverClosesWithoutGoing(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.vote(t, "alice", polls.ChoiceNotGoing)
	f.vote(t, "bob", polls.ChoiceNotGoing)

	for _, total := range []int{1, 2} {
		outcome, err := f.engine.CheckQuorum(context.Background(), shiftKey, total)
		require.NoError(t, err)
		assert.Equal(t, polls.QuorumRefused, outcome)
	}

	outcome, err := f.engine.CheckQuorum(context.Background(), shiftKey, 3)
	require.NoError(t, err)
	assert.Equal(t, polls.QuorumStaysOpen, outcome)

	poll, _ := f.engine.Get(shiftKey)
	assert.False(t, poll.Closed)
	assert.NotNil(t, poll.ExpiresAt)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestEngine_CheckQuorum_StaysOpenWithoutEligibleVoters(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.vote(t, "alice", polls.ChoiceGoing)

	outcome, err := f.engine.CheckQuorum(context.Background(), shiftKey, 0)

	require.NoError(t, err)
	assert.Equal(t, polls.QuorumStaysOpen, outcome)
}

func TestEngine_ForceClose(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	poll, err := f.engine.ForceClose(context.Background(), shiftKey)
	assert.ErrorIs(t, err, polls.ErrQuorumRefused)
	assert.False(t, poll.Closed)

	f.vote(t, "alice", polls.ChoiceGoing)

	poll, err = f.engine.ForceClose(context.Background(), shiftKey)
	require.NoError(t, err)
	assert.True(t, poll.Closed)
	assert.Nil(t, poll.ExpiresAt)
	assert.Equal(t, 0, f.clock.Pending())

	edit, _ := f.messenger.LastEdit()
	assert.Contains(t, edit.Text, "результаты просмотрены")
	assert.Empty(t, edit.Keyboard)

	row, _ := f.repository.Row(chatID, created.MessageID)
	assert.True(t, row.Closed)
	assert.Nil(t, row.ExpiresAt)

	_, err = f.engine.ForceClose(context.Background(), shiftKey)
	assert.ErrorIs(t, err, polls.ErrPollClosed)

	events := f.materializer.Events()
	require.Len(t, events, 1)
	assert.Equal(t, polls.CloseReasonManual, events[0].Reason)
}

func TestEngine_ClosedPollTimerNeverFires(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.vote(t, "alice", polls.ChoiceGoing)
	_, err := f.engine.ForceClose(context.Background(), shiftKey)
	require.NoError(t, err)
	sent := len(f.messenger.Sent)

	f.clock.Advance(2 * time.Hour)

	assert.Len(t, f.messenger.Sent, sent)
	assert.Len(t, f.materializer.Events(), 1)
}

func TestEngine_CloseRaceMaterializesOnce(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture()
		f.create(t)
		f.vote(t, "alice", polls.ChoiceGoing)
		f.vote(t, "bob", polls.ChoiceNotGoing)

		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			f.clock.Advance(30 * time.Minute)
		}()
		go func() {
			defer wg.Done()
			_, _ = f.engine.CheckQuorum(context.Background(), shiftKey, 2)
		}()
		go func() {
			defer wg.Done()
			_, _ = f.engine.ForceClose(context.Background(), shiftKey)
		}()
		wg.Wait()

		events := f.materializer.Events()
		require.Len(t, events, 1)
		assert.Equal(t, []string{"alice"}, events[0].Poll.Going)
	}
}

func TestEngine_ExtensionPolicy(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	f.clock.Advance(30 * time.Minute)

	poll, _ := f.engine.Get(shiftKey)
	assert.False(t, poll.Closed)
	assert.Equal(t, 1, poll.ExtensionCount)
	require.NotNil(t, poll.ExpiresAt)
	assert.Equal(t, start.Add(45*time.Minute), *poll.ExpiresAt)
	assert.Contains(t, f.messenger.SentTexts()[1], "Опрос продлён на 15 минут")

	f.clock.Advance(15 * time.Minute)

	poll, _ = f.engine.Get(shiftKey)
	assert.False(t, poll.Closed)
	assert.Equal(t, 1, poll.ExtensionCount)
	assert.Nil(t, poll.ExpiresAt)
	assert.Equal(t, 0, f.clock.Pending())
	assert.Contains(t, f.messenger.SentTexts()[2], "Опрос остаётся открытым")

	row, _ := f.repository.Row(chatID, created.MessageID)
	assert.False(t, row.Closed)
	assert.Nil(t, row.ExpiresAt)
	assert.Equal(t, 1, row.ExtensionCount)

	f.clock.Advance(24 * time.Hour)
	assert.Len(t, f.messenger.Sent, 3)
	assert.Empty(t, f.materializer.Events())
}

func TestEngine_SyncPollHasNoExtensions(t *testing.T) {
	f := newFixture()
	key := polls.Key{ChatID: chatID, Purpose: models.PollPurposeSync}

	_, err := f.engine.Create(context.Background(), chatID, models.PollPurposeSync, models.PollSourceManual)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)

	poll, _ := f.engine.Get(key)
	assert.False(t, poll.Closed)
	assert.Equal(t, 0, poll.ExtensionCount)
	assert.Nil(t, poll.ExpiresAt)
}

func TestEngine_TimeoutClosesWithGoing(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.clock.Advance(20 * time.Minute)
	f.vote(t, "alice", polls.ChoiceGoing)

	f.clock.Advance(10 * time.Minute)

	poll, _ := f.engine.Get(shiftKey)
	assert.True(t, poll.Closed)
	events := f.materializer.Events()
	require.Len(t, events, 1)
	assert.Equal(t, polls.CloseReasonTimeout, events[0].Reason)
	assert.Equal(t, 1, events[0].DayOffset)

	edit, _ := f.messenger.LastEdit()
	assert.Contains(t, edit.Text, "время на ответ истекло")
}

func TestEngine_EndToEndQuorum(t *testing.T) {
	f := newFixture()
	f.create(t)

	f.clock.Advance(5 * time.Minute)
	f.vote(t, "alice", polls.ChoiceGoing)
	f.clock.Advance(time.Minute)
	f.vote(t, "bob", polls.ChoiceNotGoing)

	outcome, err := f.engine.CheckQuorum(context.Background(), shiftKey, 2)
	require.NoError(t, err)
	assert.Equal(t, polls.QuorumClosed, outcome)

	events := f.materializer.Events()
	require.Len(t, events, 1)
	assert.Equal(t, polls.CloseReasonQuorum, events[0].Reason)
	assert.Equal(t, []string{"alice"}, events[0].Poll.Going)
	assert.Equal(t, start, events[0].Poll.StartedAt)
	assert.Equal(t, 1, events[0].DayOffset)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestEngine_Adopt_ExpiredPollClosesSynchronously(t *testing.T) {
	expiresAt := start.Add(-time.Minute)
	row := &models.ShiftPoll{
		ChatID:    chatID,
		MessageID: 7,
		Purpose:   models.PollPurposeShift,
		Going:     []string{"alice"},
		NotGoing:  []string{},
		ExpiresAt: &expiresAt,
		Source:    models.PollSourceScheduler,
		StartedAt: start.Add(-31 * time.Minute),
	}
	f := newFixture(row)

	poll, err := f.engine.Adopt(context.Background(), polls.FromModel(row))

	require.NoError(t, err)
	assert.True(t, poll.Closed)
	require.Len(t, f.materializer.Events(), 1)
	assert.Equal(t, []string{"alice"}, f.materializer.Events()[0].Poll.Going)

	stored, _ := f.repository.Row(chatID, 7)
	assert.True(t, stored.Closed)

	_, err = f.engine.Vote(context.Background(), shiftKey, "bob", polls.ChoiceGoing)
	assert.ErrorIs(t, err, polls.ErrPollClosed)
}

func TestEngine_Adopt_FutureDeadlineArmsRemainder(t *testing.T) {
	expiresAt := start.Add(10 * time.Minute)
	row := &models.ShiftPoll{
		ChatID:    chatID,
		MessageID: 7,
		Purpose:   models.PollPurposeShift,
		Going:     []string{"alice"},
		ExpiresAt: &expiresAt,
		Source:    models.PollSourceScheduler,
		StartedAt: start.Add(-20 * time.Minute),
	}
	f := newFixture(row)

	_, err := f.engine.Adopt(context.Background(), polls.FromModel(row))
	require.NoError(t, err)

	f.clock.Advance(9 * time.Minute)
	poll, _ := f.engine.Get(shiftKey)
	assert.False(t, poll.Closed)

	f.clock.Advance(time.Minute)
	poll, _ = f.engine.Get(shiftKey)
	assert.True(t, poll.Closed)
	assert.Len(t, f.materializer.Events(), 1)
}

func TestEngine_Adopt_NoDeadlineStaysUntimed(t *testing.T) {
	row := &models.ShiftPoll{
		ChatID:         chatID,
		MessageID:      7,
		Purpose:        models.PollPurposeShift,
		Source:         models.PollSourceScheduler,
		ExtensionCount: 1,
		StartedAt:      start.Add(-2 * time.Hour),
	}
	f := newFixture(row)

	poll, err := f.engine.Adopt(context.Background(), polls.FromModel(row))

	require.NoError(t, err)
	assert.False(t, poll.Closed)
	assert.Nil(t, poll.ExpiresAt)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestEngine_Adopt_SameMessageKeepsLiveLedger(t *testing.T) {
	f := newFixture()
	created := f.create(t)
	f.vote(t, "alice", polls.ChoiceGoing)

	stale := created
	stale.Going = nil
	poll, err := f.engine.Adopt(context.Background(), &stale)

	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, poll.Going)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestEngine_Restore(t *testing.T) {
	expiresAt := start.Add(20 * time.Minute)
	row := &models.ShiftPoll{
		ChatID:    chatID,
		MessageID: 7,
		Purpose:   models.PollPurposeShift,
		Going:     []string{},
		NotGoing:  []string{"bob"},
		ExpiresAt: &expiresAt,
		Source:    models.PollSourceManual,
		StartedAt: start.Add(-10 * time.Minute),
	}
	f := newFixture(row)

	_, err := f.engine.Vote(context.Background(), shiftKey, "alice", polls.ChoiceGoing)
	require.ErrorIs(t, err, polls.ErrPollNotFound)

	restored, err := f.engine.Restore(context.Background(), shiftKey)
	require.NoError(t, err)
	assert.Equal(t, 7, restored.MessageID)

	poll := f.vote(t, "alice", polls.ChoiceGoing)
	assert.Equal(t, []string{"alice"}, poll.Going)
	assert.Equal(t, []string{"bob"}, poll.NotGoing)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestEngine_Restore_NothingStored(t *testing.T) {
	f := newFixture()

	_, err := f.engine.Restore(context.Background(), shiftKey)

	assert.ErrorIs(t, err, polls.ErrPollNotFound)
}

func TestEngine_Restore_StoreDown(t *testing.T) {
	f := newFixture()
	f.repository.SetFailing(true)

	_, err := f.engine.Restore(context.Background(), shiftKey)

	assert.ErrorIs(t, err, polls.ErrPersistenceUnavailable)
}

func TestEngine_DegradedStoreResync(t *testing.T) {
	f := newFixture()
	created := f.create(t)
	require.False(t, f.engine.Degraded())

	f.repository.SetFailing(true)
	poll := f.vote(t, "alice", polls.ChoiceGoing)
	assert.Equal(t, []string{"alice"}, poll.Going)
	assert.True(t, f.engine.Degraded())

	assert.Error(t, f.engine.Resync(context.Background()))
	assert.True(t, f.engine.Degraded())

	f.repository.SetFailing(false)
	require.NoError(t, f.engine.Resync(context.Background()))
	assert.False(t, f.engine.Degraded())

	row, _ := f.repository.Row(chatID, created.MessageID)
	assert.Equal(t, []string{"alice"}, row.Going)
}

func TestEngine_Resync_RemovesReplacedRow(t *testing.T) {
	f := newFixture()
	replaced := f.create(t)
	f.vote(t, "alice", polls.ChoiceGoing)

	f.repository.SetFailing(true)
	current := f.create(t)
	require.NotEqual(t, replaced.MessageID, current.MessageID)

	f.repository.SetFailing(false)
	require.NoError(t, f.engine.Resync(context.Background()))
	assert.False(t, f.engine.Degraded())

	_, ok := f.repository.Row(chatID, replaced.MessageID)
	assert.False(t, ok)
	_, ok = f.repository.Row(chatID, current.MessageID)
	assert.True(t, ok)

	restarted := clock.NewFake(start.Add(time.Hour))
	materializer := &pollstest.Materializer{}
	engine := polls.NewEngine(f.repository, f.messenger, materializer, testPolicies(), restarted, zap.NewNop().Sugar())

	rows, err := f.repository.GetManyActiveBySource(context.Background(), models.PollSourceManual)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	for _, row := range rows {
		_, err := engine.Adopt(context.Background(), polls.FromModel(row))
		require.NoError(t, err)
	}
	assert.Empty(t, materializer.Events())
}

func TestEngine_Resync_StaysDegradedWhileReplacedRowRemains(t *testing.T) {
	f := newFixture()
	f.create(t)

	f.repository.SetFailing(true)
	f.create(t)

	assert.ErrorIs(t, f.engine.Resync(context.Background()), polls.ErrPersistenceUnavailable)
	assert.True(t, f.engine.Degraded())
}

func TestEngine_Resync_RetriesFailedDelete(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	f.repository.SetFailing(true)
	assert.ErrorIs(t, f.engine.Delete(context.Background(), shiftKey), polls.ErrPersistenceUnavailable)
	assert.True(t, f.engine.Degraded())

	f.repository.SetFailing(false)
	_, ok := f.repository.Row(chatID, created.MessageID)
	require.True(t, ok)

	require.NoError(t, f.engine.Resync(context.Background()))
	assert.False(t, f.engine.Degraded())
	assert.Equal(t, 0, f.repository.Len())
}

func TestEngine_DeleteChat(t *testing.T) {
	f := newFixture()
	f.create(t)
	_, err := f.engine.Create(context.Background(), chatID, models.PollPurposeSync, models.PollSourceManual)
	require.NoError(t, err)

	require.NoError(t, f.engine.DeleteChat(context.Background(), chatID))

	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, 0, f.repository.Len())
	_, err = f.engine.Vote(context.Background(), shiftKey, "alice", polls.ChoiceGoing)
	assert.ErrorIs(t, err, polls.ErrPollNotFound)
}

func TestEngine_Stop(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	f.engine.Stop()

	assert.Equal(t, 0, f.clock.Pending())
	row, _ := f.repository.Row(chatID, created.MessageID)
	assert.NotNil(t, row.ExpiresAt)
}

func uniqueVoters(poll polls.Poll) int {
	seen := make(map[string]struct{})
	for _, voter := range append(append([]string{}, poll.Going...), poll.NotGoing...) {
		seen[voter] = struct{}{}
	}
	return len(seen)
}
