package models

import (
	"strconv"
	"time"
)

type WorkShift struct {
	ID          int        `json:"id" pg:",pk"`
	TelegramID  int64      `json:"telegram_id" pg:",notnull"`
	Login       string     `json:"login" pg:",notnull"`
	ChatID      int64      `json:"chat_id"`
	ShiftDate   time.Time  `json:"shift_date" pg:",notnull"`
	BaseRate    float64    `json:"base_rate"`
	Shift       float64    `json:"shift"`
	ItemsIssued int        `json:"items_issued" pg:",use_zero"`
	Comment     string     `json:"comment"`
	IsOpened    bool       `json:"is_opened" pg:",notnull,use_zero"`
	OpenedAt    *time.Time `json:"opened_at"`
	BatchID     string     `json:"batch_id"`
	CreatedAt   time.Time  `json:"created_at" pg:"default:now()"`
}

// Mention is "@login", or the telegram id for workers without a login.
func (s *WorkShift) Mention() string {
	if s.Login != "" {
		return "@" + s.Login
	}
	return strconv.FormatInt(s.TelegramID, 10)
}
