package repositories

import (
	"context"
	"time"

	"shift_coordination_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

//go:generate mockgen -source=work_shift_repository.go -destination=mocks/work_shift_repository.go

type workShiftRepository struct {
	repository
}

type WorkShiftRepository interface {
	Create(ctx context.Context, request *models.WorkShift) (*models.WorkShift, error)
	GetManyByChatAndDateRange(ctx context.Context, chatID int64, start, end time.Time) ([]*models.WorkShift, error)
	MarkOpened(ctx context.Context, id int, openedAt time.Time) error
	UpdateItemsIssued(ctx context.Context, id int, itemsIssued int) error
	DeleteManyByChatAndDateRange(ctx context.Context, chatID int64, start, end time.Time) (int, error)
}

func NewWorkShiftRepository(db *pg.DB) WorkShiftRepository {
	return &workShiftRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *workShiftRepository) Create(ctx context.Context, request *models.WorkShift) (*models.WorkShift, error) {
	_, err := r.db.ModelContext(ctx, request).Returning("*").Insert()
	if err != nil {
		return nil, err
	}

	return request, nil
}

// GetManyByChatAndDateRange returns shifts with start <= shift_date < end.
func (r *workShiftRepository) GetManyByChatAndDateRange(ctx context.Context, chatID int64, start, end time.Time) ([]*models.WorkShift, error) {
	shifts := make([]*models.WorkShift, 0)

	err := r.db.ModelContext(ctx, &shifts).
		Where("chat_id = ?", chatID).
		Where("shift_date >= ?", start).
		Where("shift_date < ?", end).
		OrderExpr("shift_date ASC, id ASC").
		Select()

	return shifts, err
}

func (r *workShiftRepository) MarkOpened(ctx context.Context, id int, openedAt time.Time) error {
	_, err := r.db.ModelContext(ctx, (*models.WorkShift)(nil)).
		Set("is_opened = TRUE").
		Set("opened_at = ?", openedAt).
		Where("id = ?", id).
		Update()

	return err
}

func (r *workShiftRepository) UpdateItemsIssued(ctx context.Context, id int, itemsIssued int) error {
	_, err := r.db.ModelContext(ctx, (*models.WorkShift)(nil)).
		Set("items_issued = ?", itemsIssued).
		Where("id = ?", id).
		Update()

	return err
}

func (r *workShiftRepository) DeleteManyByChatAndDateRange(ctx context.Context, chatID int64, start, end time.Time) (int, error) {
	result, err := r.db.ModelContext(ctx, (*models.WorkShift)(nil)).
		Where("chat_id = ?", chatID).
		Where("shift_date >= ?", start).
		Where("shift_date < ?", end).
		Delete()
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
