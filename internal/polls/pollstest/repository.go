// Package pollstest provides in-memory collaborators for exercising the poll engine.
package pollstest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"shift_coordination_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

var ErrStoreDown = errors.New("store is down")

type rowKey struct {
	chatID    int64
	messageID int
}

// PollRepository keeps rows in memory and mirrors the conflict rules of the
// Postgres implementation: an upsert never touches a closed row.
type PollRepository struct {
	mu      sync.Mutex
	rows    map[rowKey]models.ShiftPoll
	failing bool
	upserts int
}

func NewPollRepository(rows ...*models.ShiftPoll) *PollRepository {
	r := &PollRepository{rows: make(map[rowKey]models.ShiftPoll)}
	for _, row := range rows {
		r.rows[rowKey{row.ChatID, row.MessageID}] = copyRow(row)
	}
	return r
}

// SetFailing makes every following call return ErrStoreDown.
func (r *PollRepository) SetFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failing = failing
}

func (r *PollRepository) Row(chatID int64, messageID int) (models.ShiftPoll, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[rowKey{chatID, messageID}]
	if !ok {
		return models.ShiftPoll{}, false
	}
	return copyRow(&row), true
}

func (r *PollRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rows)
}

func (r *PollRepository) Upserts() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.upserts
}

func (r *PollRepository) Upsert(ctx context.Context, request *models.ShiftPoll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return ErrStoreDown
	}

	key := rowKey{request.ChatID, request.MessageID}
	if existing, ok := r.rows[key]; ok && existing.Closed {
		return nil
	}

	r.rows[key] = copyRow(request)
	r.upserts++
	return nil
}

func (r *PollRepository) Delete(ctx context.Context, chatID int64, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return ErrStoreDown
	}

	delete(r.rows, rowKey{chatID, messageID})
	return nil
}

func (r *PollRepository) DeleteActive(ctx context.Context, chatID int64, purpose models.PollPurpose, before time.Time, keepMessageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return ErrStoreDown
	}

	for key, row := range r.rows {
		if row.ChatID != chatID || row.Purpose != purpose || row.Closed {
			continue
		}
		if row.MessageID != keepMessageID && !row.StartedAt.After(before) {
			delete(r.rows, key)
		}
	}
	return nil
}

func (r *PollRepository) GetActive(ctx context.Context, chatID int64, purpose models.PollPurpose) (*models.ShiftPoll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, ErrStoreDown
	}

	var latest *models.ShiftPoll
	for _, row := range r.rows {
		if row.ChatID != chatID || row.Purpose != purpose || row.Closed {
			continue
		}
		if latest == nil || row.StartedAt.After(latest.StartedAt) {
			found := copyRow(&row)
			latest = &found
		}
	}

	if latest == nil {
		return nil, pg.ErrNoRows
	}
	return latest, nil
}

func (r *PollRepository) GetManyActiveBySource(ctx context.Context, source models.PollSource) ([]*models.ShiftPoll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, ErrStoreDown
	}

	rows := make([]*models.ShiftPoll, 0)
	for _, row := range r.rows {
		if row.Source == source && !row.Closed {
			found := copyRow(&row)
			rows = append(rows, &found)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].StartedAt.Before(rows[j].StartedAt)
	})
	return rows, nil
}

func copyRow(row *models.ShiftPoll) models.ShiftPoll {
	copied := *row
	copied.Going = append([]string{}, row.Going...)
	copied.NotGoing = append([]string{}, row.NotGoing...)
	if row.ExpiresAt != nil {
		expiresAt := *row.ExpiresAt
		copied.ExpiresAt = &expiresAt
	}
	return copied
}
