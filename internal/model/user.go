package model

import "time"

// Tier 使用者權限等級，數字越小權限越高
type Tier int

const (
	TierAdmin     Tier = 1
	TierPresenter Tier = 2
	TierObserver  Tier = 3
	TierDefault   Tier = 4
)

func (t Tier) IsValid() bool {
	return t >= TierAdmin && t <= TierDefault
}

// IsPresenterOrAbove admin 或 presenter
func (t Tier) IsPresenterOrAbove() bool {
	return t == TierAdmin || t == TierPresenter
}

func (t Tier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierPresenter:
		return "presenter"
	case TierObserver:
		return "observer"
	case TierDefault:
		return "default"
	}
	return "unknown"
}

type User struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Tier      Tier       `json:"tier" db:"tier"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Tier == TierAdmin
}
