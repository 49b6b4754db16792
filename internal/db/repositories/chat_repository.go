package repositories

import (
	"context"

	"shift_coordination_system/internal/db/models"

	"github.com/go-pg/pg/v10"
)

//go:generate mockgen -source=chat_repository.go -destination=mocks/chat_repository.go

type chatRepository struct {
	repository
}

type ChatRepository interface {
	FindOrCreate(ctx context.Context, request *models.Chat) (*models.Chat, error)
	GetOneByChatID(ctx context.Context, chatID int64) (*models.Chat, error)
	GetManyActive(ctx context.Context, environment models.ChatEnvironment) ([]*models.Chat, error)
	Deactivate(ctx context.Context, chatID int64) error
}

func NewChatRepository(db *pg.DB) ChatRepository {
	return &chatRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *chatRepository) FindOrCreate(ctx context.Context, request *models.Chat) (*models.Chat, error) {
	_, err := r.db.ModelContext(ctx, request).
		OnConflict("(chat_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("type = EXCLUDED.type").
		Set("is_active = TRUE").
		Returning("*").
		Insert()
	if err != nil {
		return nil, err
	}

	return request, nil
}

func (r *chatRepository) GetOneByChatID(ctx context.Context, chatID int64) (*models.Chat, error) {
	chat := &models.Chat{}

	err := r.db.ModelContext(ctx, chat).
		Where("chat_id = ?", chatID).
		Select()

	return chat, err
}

func (r *chatRepository) GetManyActive(ctx context.Context, environment models.ChatEnvironment) ([]*models.Chat, error) {
	chats := make([]*models.Chat, 0)

	err := r.db.ModelContext(ctx, &chats).
		Where("is_active = TRUE").
		Where("environment = ?", environment).
		OrderExpr("id ASC").
		Select()

	return chats, err
}

func (r *chatRepository) Deactivate(ctx context.Context, chatID int64) error {
	_, err := r.db.ModelContext(ctx, (*models.Chat)(nil)).
		Set("is_active = FALSE").
		Where("chat_id = ?", chatID).
		Update()

	return err
}
