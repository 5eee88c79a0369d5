package calendar

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request webhook 的請求格式
type Request struct {
	Method         string          `json:"method"`
	Token          string          `json:"token"`
	CalendarID     string          `json:"calendarId"`
	EventID        string          `json:"eventId,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Body           json.RawMessage `json:"body,omitempty"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// Response webhook 的回應；失敗時 webhook 仍可能回 HTTP 200 並在 body 帶 statusCode
type Response struct {
	ID             string          `json:"id"`
	Status         string          `json:"status,omitempty"`
	StatusCode     int             `json:"statusCode,omitempty"`
	ConferenceData *ConferenceData `json:"conferenceData,omitempty"`
}

// ConferenceURI 回傳第一個會議入口，沒有則為空字串
func (r *Response) ConferenceURI() string {
	if r == nil || r.ConferenceData == nil {
		return ""
	}
	for _, ep := range r.ConferenceData.EntryPoints {
		if ep.URI != "" {
			return ep.URI
		}
	}
	return ""
}

type EventBody struct {
	Summary        string          `json:"summary,omitempty"`
	Description    string          `json:"description,omitempty"`
	Start          *EventTime      `json:"start,omitempty"`
	End            *EventTime      `json:"end,omitempty"`
	Attendees      []Attendee      `json:"attendees,omitempty"`
	ConferenceData *ConferenceData `json:"conferenceData,omitempty"`
}

type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type Attendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

type ConferenceData struct {
	CreateRequest *CreateRequest `json:"createRequest,omitempty"`
	EntryPoints   []EntryPoint   `json:"entryPoints,omitempty"`
}

type CreateRequest struct {
	ConferenceSolutionKey ConferenceSolutionKey `json:"conferenceSolutionKey"`
	RequestID             string                `json:"requestId"`
}

type ConferenceSolutionKey struct {
	Type string `json:"type"`
}

type EntryPoint struct {
	EntryPointType string `json:"entryPointType,omitempty"`
	URI            string `json:"uri"`
}

const conferenceSolutionType = "hangoutsMeet"

// CreateEventInput 建立外部行事曆事件所需資料
type CreateEventInput struct {
	Title        string
	Description  string
	Starts       time.Time
	Ends         time.Time
	CreatorEmail string
	Conference   bool
}

// NewCreateBody 建立者以 accepted 身分列為參與者；需要視訊時附上 createRequest
func NewCreateBody(in CreateEventInput, loc *time.Location) EventBody {
	body := EventBody{
		Summary:     in.Title,
		Description: in.Description,
		Start:       newEventTime(in.Starts, loc),
		End:         newEventTime(in.Ends, loc),
		Attendees: []Attendee{
			{Email: in.CreatorEmail, ResponseStatus: "accepted"},
		},
	}

	if in.Conference {
		body.ConferenceData = &ConferenceData{
			CreateRequest: &CreateRequest{
				ConferenceSolutionKey: ConferenceSolutionKey{Type: conferenceSolutionType},
				RequestID:             uuid.New().String(),
			},
		}
	}

	return body
}

// NewTimesBody 只更新時段
func NewTimesBody(starts, ends time.Time, loc *time.Location) EventBody {
	return EventBody{
		Start: newEventTime(starts, loc),
		End:   newEventTime(ends, loc),
	}
}

func newEventTime(t time.Time, loc *time.Location) *EventTime {
	if loc == nil {
		loc = time.UTC
	}
	return &EventTime{
		DateTime: t.In(loc).Format(time.RFC3339),
		TimeZone: loc.String(),
	}
}
