package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_ListRegistrations(t *testing.T) {
	starts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	items := []*model.UserRegistration{{
		Registration: &model.Registration{
			EventID: 5, UserID: memberID, Attended: true,
			Event: &model.Event{ID: 5, Starts: starts, Ends: starts.Add(90 * time.Minute)},
		},
		State: model.StateRegisteredAttended,
		Hours: 2,
	}}

	t.Run("Self can read own registrations", func(t *testing.T) {
		f := setupRouter()
		f.registrations.On("ListByUser", mock.Anything, memberID, false).Return(items, nil).Once()

		w := f.do(http.MethodGet, "/api/v1/users/3/registrations", memberID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "attended", body[0]["state"])
		f.registrations.AssertExpectations(t)
	})

	t.Run("Presenter can read another user", func(t *testing.T) {
		f := setupRouter()
		f.registrations.On("ListByUser", mock.Anything, memberID, false).Return(items, nil).Once()

		w := f.do(http.MethodGet, "/api/v1/users/3/registrations", presenterID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Member cannot read another user", func(t *testing.T) {
		f := setupRouter()

		w := f.do(http.MethodGet, "/api/v1/users/2/registrations", memberID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		f.registrations.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown user", func(t *testing.T) {
		f := setupRouter()
		f.registrations.On("ListByUser", mock.Anything, 42, false).Return(nil, apperrors.ErrUserNotFound).Once()

		w := f.do(http.MethodGet, "/api/v1/users/42/registrations", adminID, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid user id", func(t *testing.T) {
		f := setupRouter()

		w := f.do(http.MethodGet, "/api/v1/users/abc/registrations", adminID, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_ListConfirmed(t *testing.T) {
	t.Run("Returns attended registrations with hours", func(t *testing.T) {
		f := setupRouter()
		f.registrations.On("ListByUser", mock.Anything, memberID, true).Return([]*model.UserRegistration{{
			Registration: &model.Registration{EventID: 5, UserID: memberID, Attended: true},
			State:        model.StateRegisteredAttended,
			Hours:        3,
		}}, nil).Once()

		w := f.do(http.MethodGet, "/api/v1/users/3/confirmed", memberID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, float64(3), body[0]["hours"])
	})

	t.Run("Member cannot read another user", func(t *testing.T) {
		f := setupRouter()

		w := f.do(http.MethodGet, "/api/v1/users/1/confirmed", memberID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserHandler_ListPresenting(t *testing.T) {
	t.Run("Self", func(t *testing.T) {
		f := setupRouter()
		f.presenters.On("ListByUser", mock.Anything, presenterID).Return([]*model.Event{{ID: 5}}, nil).Once()

		w := f.do(http.MethodGet, "/api/v1/users/2/presenting", presenterID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		f.presenters.AssertExpectations(t)
	})

	t.Run("Admin", func(t *testing.T) {
		f := setupRouter()
		f.presenters.On("ListByUser", mock.Anything, presenterID).Return([]*model.Event{}, nil).Once()

		w := f.do(http.MethodGet, "/api/v1/users/2/presenting", adminID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Presenter cannot read another user", func(t *testing.T) {
		f := setupRouter()

		w := f.do(http.MethodGet, "/api/v1/users/3/presenting", presenterID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		f.presenters.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	})
}
