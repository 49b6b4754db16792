package models

import "time"

// ShiftBatch records that the shift records of one closed poll were written.
// (ChatID, MessageID, PollStartedAt) is unique.
type ShiftBatch struct {
	tableName struct{} `pg:"shift_materializations,alias:shift_batch"`

	ID            int       `json:"id" pg:",pk"`
	BatchID       string    `json:"batch_id" pg:",notnull,unique"`
	ChatID        int64     `json:"chat_id" pg:",notnull"`
	MessageID     int       `json:"message_id" pg:",notnull"`
	PollStartedAt time.Time `json:"poll_started_at" pg:",notnull"`
	VoterCount    int       `json:"voter_count" pg:",use_zero"`
	CreatedAt     time.Time `json:"created_at" pg:"default:now()"`
}
