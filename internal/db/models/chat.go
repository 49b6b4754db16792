package models

import "time"

type ChatEnvironment string

const (
	ChatEnvironmentProd ChatEnvironment = "prod"
	ChatEnvironmentDev  ChatEnvironment = "dev"
)

type Chat struct {
	ID          int             `json:"id" pg:",pk"`
	ChatID      int64           `json:"chat_id" pg:",notnull,unique"`
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Environment ChatEnvironment `json:"environment" pg:",notnull,default:'prod'"`
	IsActive    bool            `json:"is_active" pg:",notnull,use_zero,default:true"`
	AddedAt     time.Time       `json:"added_at" pg:"default:now()"`
}
