package polls

import (
	"testing"
	"time"

	"shift_coordination_system/internal/db/models"

	"github.com/stretchr/testify/assert"
)

func TestPollVote(t *testing.T) {
	p := &Poll{}

	assert.True(t, p.Vote("alice", ChoiceGoing))
	assert.False(t, p.Vote("alice", ChoiceGoing))
	assert.True(t, p.Vote("alice", ChoiceNotGoing))
	assert.Empty(t, p.Going)
	assert.Equal(t, []string{"alice"}, p.NotGoing)
	assert.False(t, p.Vote("alice", Choice(7)))
}

func TestPollClone_DoesNotShareSets(t *testing.T) {
	expiresAt := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	p := &Poll{Going: []string{"alice"}, ExpiresAt: &expiresAt}

	clone := p.Clone()
	clone.Going[0] = "mallory"
	*clone.ExpiresAt = expiresAt.Add(time.Hour)

	assert.Equal(t, "alice", p.Going[0])
	assert.Equal(t, expiresAt, *p.ExpiresAt)
}

func TestFromModel_RepairsOverlappingSets(t *testing.T) {
	row := &models.ShiftPoll{
		ChatID:    -100,
		MessageID: 3,
		Going:     []string{"alice"},
		NotGoing:  []string{"alice", "bob"},
	}

	poll := FromModel(row)

	assert.Equal(t, models.PollPurposeShift, poll.Purpose)
	assert.Equal(t, []string{"alice"}, poll.Going)
	assert.Equal(t, []string{"bob"}, poll.NotGoing)
}

func TestToModel_NeverStoresNilSets(t *testing.T) {
	row := toModel(&Poll{ChatID: -100, MessageID: 3})

	assert.NotNil(t, row.Going)
	assert.NotNil(t, row.NotGoing)
}

func TestMinutesText(t *testing.T) {
	assert.Equal(t, "30 минут", minutesText(30*time.Minute))
	assert.Equal(t, "1 минуту", minutesText(time.Minute))
	assert.Equal(t, "21 минуту", minutesText(21*time.Minute))
	assert.Equal(t, "3 минуты", minutesText(3*time.Minute))
	assert.Equal(t, "12 минут", minutesText(12*time.Minute))
	assert.Equal(t, "15 минут", minutesText(15*time.Minute))
}

func TestResultsText(t *testing.T) {
	text := ResultsText(Poll{
		Purpose:  models.PollPurposeShift,
		Going:    []string{"alice", "carol"},
		NotGoing: []string{},
	})

	assert.Contains(t, text, "✅ Выходят (2):\n  @alice\n  @carol")
	assert.Contains(t, text, "❌ Не выходят (0):\n  (никто)")
}

func TestClosedText_SyncManual(t *testing.T) {
	text := closedText(&Poll{Purpose: models.PollPurposeSync, Going: []string{"alice"}}, CloseReasonManual)

	assert.Equal(t, "📋 Опрос завершён (автоматически созданы смены на сегодня)\n\n✅ На смене (1): @alice", text)
}

func TestOpenKeyboard_SyncPoll(t *testing.T) {
	keyboard := openKeyboard(&Poll{ChatID: -100, Purpose: models.PollPurposeSync})

	assert.Len(t, keyboard, 3)
	assert.Equal(t, "sync_poll_close:-100", keyboard[2][0].Data)
}
