package model

import "time"

// NoteMaxLength accommodation_notes.note 欄位長度
const NoteMaxLength = 1500

type AccommodationNote struct {
	ID          int       `json:"id" db:"id"`
	EventID     int       `json:"event_id" db:"event_id"`
	Required    bool      `json:"required" db:"required"`
	Note        *string   `json:"note,omitempty" db:"note"`
	RequestedBy *int      `json:"requested_by,omitempty" db:"requested_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
