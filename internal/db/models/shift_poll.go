package models

import "time"

type (
	PollPurpose string
	PollSource  string
)

func (p PollPurpose) String() string {
	return string(p)
}

func (s PollSource) String() string {
	return string(s)
}

const (
	PollPurposeShift PollPurpose = "shift_poll"
	PollPurposeSync  PollPurpose = "sync_poll"

	PollSourceManual    PollSource = "manual"
	PollSourceScheduler PollSource = "scheduler"
)

// ShiftPoll is the durable shadow of a live poll ledger.
type ShiftPoll struct {
	tableName struct{} `pg:"shift_polls,alias:shift_poll"`

	ID             int         `json:"id" pg:",pk"`
	ChatID         int64       `json:"chat_id" pg:",notnull,unique:shift_polls_chat_message"`
	MessageID      int         `json:"message_id" pg:",notnull,unique:shift_polls_chat_message"`
	Purpose        PollPurpose `json:"purpose" pg:",notnull,default:'shift_poll'"`
	Going          []string    `json:"going" pg:"type:jsonb,notnull"`
	NotGoing       []string    `json:"not_going" pg:"type:jsonb,notnull"`
	ExpiresAt      *time.Time  `json:"expires_at"`
	Closed         bool        `json:"closed" pg:",notnull,use_zero"`
	Source         PollSource  `json:"source" pg:",notnull,default:'manual'"`
	ExtensionCount int         `json:"extension_count" pg:",notnull,use_zero"`
	StartedAt      time.Time   `json:"started_at" pg:",notnull"`
}
