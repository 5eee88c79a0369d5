package model

import "time"

// RegistrationState 報名狀態機
type RegistrationState string

const (
	StateUnregistered       RegistrationState = "unregistered"
	StateRegistered         RegistrationState = "registered"
	StateRegisteredAttended RegistrationState = "attended"
)

// Registration 一個 (event, user) 的報名紀錄
type Registration struct {
	EventID   int       `json:"event_id" db:"event_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Attended  bool      `json:"attended" db:"attended"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	User  *User  `json:"user,omitempty" db:"-"`
	Event *Event `json:"event,omitempty" db:"-"`
}

func (r *Registration) State() RegistrationState {
	if r == nil {
		return StateUnregistered
	}
	if r.Attended {
		return StateRegisteredAttended
	}
	return StateRegistered
}

// UserRegistration 使用者視角的報名紀錄
type UserRegistration struct {
	*Registration
	State RegistrationState `json:"state"`
	// 已確認出席才計算，不足一小時進位
	Hours int `json:"hours,omitempty"`
}

// AccommodationRequest 報名時附帶的需求
type AccommodationRequest struct {
	Required bool   `json:"accommodationRequired"`
	Note     string `json:"accommodationNote"`
}

type RegisterRequest struct {
	AccommodationRequest
}

type SetAttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}

type BulkRegisterRequest struct {
	UserIDs []int `json:"userIds" binding:"required,min=1"`
	Force   bool  `json:"force"`
}

type BulkAttendanceRequest struct {
	UserIDs  []int `json:"userIds" binding:"required,min=1"`
	Attended *bool `json:"attended" binding:"required"`
}

// BulkResult 批次操作結果
type BulkResult struct {
	Registered []int `json:"registered"`
	Skipped    []int `json:"skipped"` // 找不到的使用者或已報名者
}
