package polls

import (
	"time"

	"shift_coordination_system/internal/db/models"
)

func toModel(p *Poll) *models.ShiftPoll {
	going := append([]string{}, p.Going...)
	notGoing := append([]string{}, p.NotGoing...)

	var expiresAt *time.Time
	if p.ExpiresAt != nil {
		value := p.ExpiresAt.UTC()
		expiresAt = &value
	}

	return &models.ShiftPoll{
		ChatID:         p.ChatID,
		MessageID:      p.MessageID,
		Purpose:        p.Purpose,
		Going:          going,
		NotGoing:       notGoing,
		ExpiresAt:      expiresAt,
		Closed:         p.Closed,
		Source:         p.Source,
		ExtensionCount: p.ExtensionCount,
		StartedAt:      p.StartedAt.UTC(),
	}
}

// FromModel rebuilds a ledger from its stored row.
func FromModel(row *models.ShiftPoll) *Poll {
	poll := &Poll{
		ChatID:         row.ChatID,
		MessageID:      row.MessageID,
		Purpose:        row.Purpose,
		Going:          append([]string{}, row.Going...),
		NotGoing:       append([]string{}, row.NotGoing...),
		Closed:         row.Closed,
		Source:         row.Source,
		ExtensionCount: row.ExtensionCount,
		StartedAt:      row.StartedAt,
	}

	if poll.Purpose == "" {
		poll.Purpose = models.PollPurposeShift
	}

	if row.ExpiresAt != nil {
		expiresAt := *row.ExpiresAt
		poll.ExpiresAt = &expiresAt
	}

	// a voter present in both sets keeps the affirmative vote
	for _, voter := range poll.Going {
		poll.NotGoing, _ = without(poll.NotGoing, voter)
	}

	return poll
}
