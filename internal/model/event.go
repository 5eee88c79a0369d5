package model

import (
	"math"
	"time"
)

// Event 研習場次
type Event struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	EventTypeID int       `json:"event_type_id" db:"event_type_id"`
	LocationID  *int      `json:"location_id,omitempty" db:"location_id"`
	Capacity    int       `json:"capacity" db:"capacity"`
	Starts      time.Time `json:"starts" db:"starts"`
	Ends        time.Time `json:"ends" db:"ends"`
	Active      bool      `json:"active" db:"active"`
	Occurred    bool      `json:"occurred" db:"occurred"`
	ExtCalendar string    `json:"ext_calendar" db:"ext_calendar"` // 建立時寫入後不可變更
	CreatedBy   *int      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Links []*EventLink `json:"links,omitempty" db:"-"`
}

// IsOpen 檢查場次是否可報名
func (e *Event) IsOpen() bool {
	return e.Active
}

// DurationHours 場次時數，不足一小時進位
func (e *Event) DurationHours() int {
	if !e.Ends.After(e.Starts) {
		return 0
	}
	return int(math.Ceil(e.Ends.Sub(e.Starts).Hours()))
}

type EventType struct {
	ID                 int    `json:"id" db:"id"`
	Name               string `json:"name" db:"name"`
	Description        string `json:"description" db:"description"`
	RequiresConference bool   `json:"requires_conference" db:"requires_conference"`
}

type LinkType struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type EventLink struct {
	ID         int       `json:"id" db:"id"`
	EventID    int       `json:"event_id" db:"event_id"`
	LinkTypeID int       `json:"link_type_id" db:"link_type_id"`
	Name       string    `json:"name" db:"name"`
	URI        string    `json:"uri" db:"uri"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CreateEventParams 建立場次的輸入
type CreateEventParams struct {
	Title       string    `json:"title" binding:"required,max=64"`
	Description string    `json:"description" binding:"required,max=3000"`
	EventTypeID int       `json:"event_type_id" binding:"required"`
	LocationID  *int      `json:"location_id"`
	Capacity    int       `json:"capacity" binding:"min=0"`
	Starts      time.Time `json:"starts" binding:"required"`
	Ends        time.Time `json:"ends" binding:"required"`
}

// DuplicateEventParams 複製場次時只需要新的時段
type DuplicateEventParams struct {
	Starts time.Time `json:"starts" binding:"required"`
	Ends   time.Time `json:"ends" binding:"required"`
}

// UpdateEventParams 部分更新；ext_calendar 不在可更新欄位內
type UpdateEventParams struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	LocationID  *int       `json:"location_id"`
	Capacity    *int       `json:"capacity"`
	Active      *bool      `json:"active"`
	Starts      *time.Time `json:"starts"`
	Ends        *time.Time `json:"ends"`
}

// IsEmpty 沒有任何欄位需要更新
func (p UpdateEventParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.LocationID == nil &&
		p.Capacity == nil && p.Active == nil && p.Starts == nil && p.Ends == nil
}

// TimesChanged 時段有變動時需要同步外部行事曆
func (p UpdateEventParams) TimesChanged() bool {
	return p.Starts != nil || p.Ends != nil
}

// EventResponse 場次回應，附上剩餘名額
type EventResponse struct {
	*Event
	Available int `json:"available"`
}
