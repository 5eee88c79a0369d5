package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SyncKind 外部行事曆同步動作
type SyncKind string

const (
	SyncKindCreate         SyncKind = "create"
	SyncKindUpdate         SyncKind = "update"
	SyncKindDelete         SyncKind = "delete"
	SyncKindAddAttendee    SyncKind = "add_attendee"
	SyncKindRemoveAttendee SyncKind = "remove_attendee"
)

func (k SyncKind) IsValid() bool {
	switch k {
	case SyncKindCreate, SyncKindUpdate, SyncKindDelete, SyncKindAddAttendee, SyncKindRemoveAttendee:
		return true
	}
	return false
}

// Method webhook 的 method 欄位
func (k SyncKind) Method() string {
	switch k {
	case SyncKindCreate:
		return "post"
	case SyncKindUpdate:
		return "put"
	case SyncKindAddAttendee:
		return "patch"
	case SyncKindRemoveAttendee:
		return "pop"
	case SyncKindDelete:
		return "delete"
	}
	return ""
}

// SyncStatus outbox 狀態
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncOperation 一筆待送往外部行事曆的同步意圖 (outbox row)
type SyncOperation struct {
	ID             int64           `json:"id" db:"id"`
	IdempotencyKey uuid.UUID       `json:"idempotency_key" db:"idempotency_key"`
	Kind           SyncKind        `json:"kind" db:"kind"`
	EventID        int             `json:"event_id" db:"event_id"`
	ExtCalendar    string          `json:"ext_calendar" db:"ext_calendar"`
	UserEmail      string          `json:"user_email,omitempty" db:"user_email"`
	Payload        json.RawMessage `json:"payload,omitempty" db:"payload"`
	Status         SyncStatus      `json:"status" db:"status"`
	Attempts       int             `json:"attempts" db:"attempts"`
	LastError      string          `json:"last_error,omitempty" db:"last_error"`
	NextAttemptAt  time.Time       `json:"next_attempt_at" db:"next_attempt_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (o *SyncOperation) IsDone() bool {
	return o.Status == SyncStatusSucceeded
}

// SyncMessage 佇列上傳遞的內容，只帶 outbox id，內容以資料庫為準
type SyncMessage struct {
	OperationID int64 `json:"operation_id"`
}
