package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateBody(t *testing.T) {
	loc, err := time.LoadLocation("America/Indiana/Indianapolis")
	require.NoError(t, err)

	in := testInput()
	in.Conference = false
	body := NewCreateBody(in, loc)

	assert.Nil(t, body.ConferenceData)
	assert.Equal(t, "2026-03-01T10:00:00-05:00", body.Start.DateTime)
	assert.Equal(t, "America/Indiana/Indianapolis", body.End.TimeZone)
	assert.Equal(t, []Attendee{{Email: "creator@school.org", ResponseStatus: "accepted"}}, body.Attendees)

	in.Conference = true
	first := NewCreateBody(in, loc)
	second := NewCreateBody(in, loc)
	require.NotNil(t, first.ConferenceData)
	assert.Equal(t, "hangoutsMeet", first.ConferenceData.CreateRequest.ConferenceSolutionKey.Type)
	assert.NotEqual(t, first.ConferenceData.CreateRequest.RequestID, second.ConferenceData.CreateRequest.RequestID)
}

func TestNewTimesBody(t *testing.T) {
	starts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	body := NewTimesBody(starts, starts.Add(time.Hour), nil)

	assert.Empty(t, body.Summary)
	assert.Equal(t, "2026-06-01T12:00:00Z", body.Start.DateTime)
	assert.Equal(t, "UTC", body.Start.TimeZone)
	assert.Nil(t, body.Attendees)
}

func TestResponse_ConferenceURI(t *testing.T) {
	var nilResp *Response
	assert.Empty(t, nilResp.ConferenceURI())
	assert.Empty(t, (&Response{ID: "x"}).ConferenceURI())
	assert.Equal(t, "https://b", (&Response{ConferenceData: &ConferenceData{
		EntryPoints: []EntryPoint{{URI: ""}, {URI: "https://b"}},
	}}).ConferenceURI())
}
