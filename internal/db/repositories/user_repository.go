package repositories

import (
	"context"
	"strconv"

	"shift_coordination_system/internal/db/models"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

//go:generate mockgen -source=user_repository.go -destination=mocks/user_repository.go

type userRepository struct {
	repository
}

type UserRepository interface {
	GetOneByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	// GetOneByLoginOrTelegramID resolves a voter id, which is either a login or
	// a numeric telegram id for users without a username.
	GetOneByLoginOrTelegramID(ctx context.Context, id string) (*models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

func NewUserRepository(db *pg.DB) UserRepository {
	return &userRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *userRepository) GetOneByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	user := &models.User{}

	err := r.db.ModelContext(ctx, user).
		Where("telegram_id = ?", telegramID).
		Select()

	return user, err
}

func (r *userRepository) GetOneByLoginOrTelegramID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}

	query := r.db.ModelContext(ctx, user).
		WhereGroup(func(q *orm.Query) (*orm.Query, error) {
			q = q.WhereOr("login = ?", id)
			if telegramID, err := strconv.ParseInt(id, 10, 64); err == nil {
				q = q.WhereOr("telegram_id = ?", telegramID)
			}
			return q, nil
		}).
		OrderExpr("id ASC").
		Limit(1)

	err := query.Select()

	return user, err
}

func (r *userRepository) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	return r.db.ModelContext(ctx, (*models.User)(nil)).
		Where("role = ?", role).
		Where("is_active = TRUE").
		Count()
}
