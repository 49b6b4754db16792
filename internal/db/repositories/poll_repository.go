package repositories

import (
	"context"
	"time"

	"shift_coordination_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

//go:generate mockgen -source=poll_repository.go -destination=mocks/poll_repository.go

type pollRepository struct {
	repository
}

type PollRepository interface {
	// Upsert inserts the row or updates the mutable columns of the existing
	// (chat_id, message_id) row. A row that is already closed is left untouched.
	Upsert(ctx context.Context, request *models.ShiftPoll) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	// DeleteActive removes the non-closed rows of (chatID, purpose) started no
	// later than before, except the row of keepMessageID. Zero keeps none.
	DeleteActive(ctx context.Context, chatID int64, purpose models.PollPurpose, before time.Time, keepMessageID int) error
	GetActive(ctx context.Context, chatID int64, purpose models.PollPurpose) (*models.ShiftPoll, error)
	GetManyActiveBySource(ctx context.Context, source models.PollSource) ([]*models.ShiftPoll, error)
}

func NewPollRepository(db *pg.DB) PollRepository {
	return &pollRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *pollRepository) Upsert(ctx context.Context, request *models.ShiftPoll) error {
	_, err := r.db.ModelContext(ctx, request).
		OnConflict("(chat_id, message_id) DO UPDATE").
		Set("going = EXCLUDED.going").
		Set("not_going = EXCLUDED.not_going").
		Set("expires_at = EXCLUDED.expires_at").
		Set("closed = EXCLUDED.closed").
		Set("extension_count = EXCLUDED.extension_count").
		Where("shift_poll.closed = FALSE").
		Insert()

	return err
}

func (r *pollRepository) Delete(ctx context.Context, chatID int64, messageID int) error {
	_, err := r.db.ModelContext(ctx, (*models.ShiftPoll)(nil)).
		Where("chat_id = ?", chatID).
		Where("message_id = ?", messageID).
		Delete()

	return err
}

func (r *pollRepository) DeleteActive(ctx context.Context, chatID int64, purpose models.PollPurpose, before time.Time, keepMessageID int) error {
	_, err := r.db.ModelContext(ctx, (*models.ShiftPoll)(nil)).
		Where("chat_id = ?", chatID).
		Where("purpose = ?", purpose).
		Where("closed = FALSE").
		Where("started_at <= ?", before).
		Where("message_id <> ?", keepMessageID).
		Delete()

	return err
}

func (r *pollRepository) GetActive(ctx context.Context, chatID int64, purpose models.PollPurpose) (*models.ShiftPoll, error) {
	poll := &models.ShiftPoll{}

	err := r.db.ModelContext(ctx, poll).
		Where("chat_id = ?", chatID).
		Where("purpose = ?", purpose).
		Where("closed = FALSE").
		OrderExpr("started_at DESC").
		Limit(1).
		Select()

	return poll, err
}

func (r *pollRepository) GetManyActiveBySource(ctx context.Context, source models.PollSource) ([]*models.ShiftPoll, error) {
	polls := make([]*models.ShiftPoll, 0)

	err := r.db.ModelContext(ctx, &polls).
		Where("source = ?", source).
		Where("closed = FALSE").
		OrderExpr("started_at ASC").
		Select()

	return polls, err
}
