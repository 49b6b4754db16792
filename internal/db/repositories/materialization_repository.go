package repositories

import (
	"context"

	"shift_coordination_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

//go:generate mockgen -source=materialization_repository.go -destination=mocks/materialization_repository.go

type materializationRepository struct {
	repository
}

type MaterializationRepository interface {
	// Claim records the batch and reports false when a batch for the same
	// (chat_id, message_id, poll_started_at) was already recorded.
	Claim(ctx context.Context, request *models.ShiftBatch) (bool, error)
}

func NewMaterializationRepository(db *pg.DB) MaterializationRepository {
	return &materializationRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *materializationRepository) Claim(ctx context.Context, request *models.ShiftBatch) (bool, error) {
	result, err := r.db.ModelContext(ctx, request).
		OnConflict("(chat_id, message_id, poll_started_at) DO NOTHING").
		Insert()
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}
