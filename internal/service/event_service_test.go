package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/calendar"
	calendarMocks "go-gin-pd-registration/internal/calendar/mocks"
	"go-gin-pd-registration/internal/model"
	repoMocks "go-gin-pd-registration/internal/repository/mocks"
	"go-gin-pd-registration/internal/service"
	serviceMocks "go-gin-pd-registration/internal/service/mocks"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type eventFixture struct {
	db               *repoMocks.DBMock
	eventRepo        *repoMocks.EventRepositoryMock
	registrationRepo *repoMocks.RegistrationRepositoryMock
	eventTypeRepo    *repoMocks.EventTypeRepositoryMock
	userRepo         *repoMocks.UserRepositoryMock
	linkRepo         *repoMocks.LinkRepositoryMock
	presenters       *serviceMocks.PresenterServiceMock
	sync             *serviceMocks.SyncServiceMock
	ledger           *serviceMocks.CapacityLedgerMock
	gateway          *calendarMocks.GatewayMock
}

func setupEventService() (service.EventService, *eventFixture) {
	f := &eventFixture{
		db:               repoMocks.NewDBMock(),
		eventRepo:        repoMocks.NewEventRepositoryMock(),
		registrationRepo: repoMocks.NewRegistrationRepositoryMock(),
		eventTypeRepo:    repoMocks.NewEventTypeRepositoryMock(),
		userRepo:         repoMocks.NewUserRepositoryMock(),
		linkRepo:         repoMocks.NewLinkRepositoryMock(),
		presenters:       serviceMocks.NewPresenterServiceMock(),
		sync:             serviceMocks.NewSyncServiceMock(),
		ledger:           serviceMocks.NewCapacityLedgerMock(),
		gateway:          calendarMocks.NewGatewayMock(),
	}
	svc := service.NewEventService(
		f.db, f.eventRepo, f.registrationRepo, f.eventTypeRepo, f.userRepo, f.linkRepo,
		f.presenters, f.sync, f.ledger, f.gateway,
		config.LoadTestConfig().Calendar,
		noop.NewTracerProvider().Tracer("test"),
	)
	return svc, f
}

func validCreateParams() model.CreateEventParams {
	starts := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	return model.CreateEventParams{
		Title:       "Intro to Rubrics",
		Description: "Hands-on session",
		EventTypeID: 2,
		Capacity:    20,
		Starts:      starts,
		Ends:        starts.Add(time.Hour),
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	creator := &model.User{ID: 7, Email: "creator@school.org", Tier: model.TierDefault}

	t.Run("Success with conferencing", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx

		f.userRepo.On("FindByID", ctx, 7).Return(creator, nil).Once()
		f.eventTypeRepo.On("FindByID", ctx, 2).Return(&model.EventType{ID: 2, RequiresConference: true}, nil).Once()
		f.gateway.On("CreateEvent", mock.Anything, mock.MatchedBy(func(in calendar.CreateEventInput) bool {
			return in.Conference && in.CreatorEmail == "creator@school.org"
		}), mock.Anything).Return(&calendar.Response{
			ID:             "ext123",
			ConferenceData: &calendar.ConferenceData{EntryPoints: []calendar.EntryPoint{{URI: "https://meet.example/abc"}}},
		}, nil).Once()
		f.eventRepo.On("Create", mock.Anything, tx, mock.MatchedBy(func(e *model.Event) bool {
			return e.ExtCalendar == "ext123" && e.Active && *e.CreatedBy == 7
		})).Return(&model.Event{ID: 10, Capacity: 20, ExtCalendar: "ext123"}, nil).Once()
		f.presenters.On("AssignInTx", mock.Anything, tx, 10, 7).Return(&model.Presenter{EventID: 10, UserID: 7}, true, nil).Once()
		f.linkRepo.On("FindTypeByName", mock.Anything, tx, "conferencing").Return(&model.LinkType{ID: 1, Name: "conferencing"}, nil).Once()
		f.linkRepo.On("Create", mock.Anything, tx, mock.MatchedBy(func(l *model.EventLink) bool {
			return l.EventID == 10 && l.URI == "https://meet.example/abc" && l.LinkTypeID == 1
		})).Return(&model.EventLink{ID: 1, EventID: 10, URI: "https://meet.example/abc"}, nil).Once()
		f.ledger.On("InvalidateSeats", mock.Anything, 10).Once()

		resp, err := svc.Create(ctx, 7, validCreateParams())

		require.NoError(t, err)
		assert.Equal(t, "ext123", resp.ExtCalendar)
		assert.Len(t, resp.Links, 1)
		assert.Equal(t, 20, resp.Available)
		assert.True(t, tx.Committed)
		f.linkRepo.AssertExpectations(t)
		f.presenters.AssertExpectations(t)
	})

	t.Run("Success without conferencing", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx

		f.userRepo.On("FindByID", ctx, 7).Return(creator, nil).Once()
		f.eventTypeRepo.On("FindByID", ctx, 2).Return(&model.EventType{ID: 2}, nil).Once()
		f.gateway.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).Return(&calendar.Response{ID: "ext456"}, nil).Once()
		f.eventRepo.On("Create", mock.Anything, tx, mock.Anything).Return(&model.Event{ID: 11, Capacity: 20, ExtCalendar: "ext456"}, nil).Once()
		f.presenters.On("AssignInTx", mock.Anything, tx, 11, 7).Return(&model.Presenter{EventID: 11, UserID: 7}, true, nil).Once()
		f.ledger.On("InvalidateSeats", mock.Anything, 11).Once()

		resp, err := svc.Create(ctx, 7, validCreateParams())

		require.NoError(t, err)
		assert.Empty(t, resp.Links)
		f.linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - gateway error persists nothing", func(t *testing.T) {
		svc, f := setupEventService()

		f.userRepo.On("FindByID", ctx, 7).Return(creator, nil).Once()
		f.eventTypeRepo.On("FindByID", ctx, 2).Return(&model.EventType{ID: 2}, nil).Once()
		f.gateway.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrSyncFailure).Once()

		_, err := svc.Create(ctx, 7, validCreateParams())

		assert.ErrorIs(t, err, apperrors.ErrSyncFailure)
		assert.Equal(t, 0, f.db.Begins)
		f.eventRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - database error enqueues compensating delete", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx
		dbErr := errors.New("connection reset")
		op := &model.SyncOperation{ID: 50}

		f.userRepo.On("FindByID", ctx, 7).Return(creator, nil).Once()
		f.eventTypeRepo.On("FindByID", ctx, 2).Return(&model.EventType{ID: 2}, nil).Once()
		f.gateway.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).Return(&calendar.Response{ID: "ext789"}, nil).Once()
		f.eventRepo.On("Create", mock.Anything, tx, mock.Anything).Return(nil, dbErr).Once()
		f.sync.On("Enqueue", mock.Anything, tx, mock.MatchedBy(func(in service.SyncIntent) bool {
			return in.Kind == model.SyncKindDelete && in.ExtCalendar == "ext789"
		})).Return(op, nil).Once()
		f.sync.On("Notify", mock.Anything, []*model.SyncOperation{op}).Once()

		_, err := svc.Create(ctx, 7, validCreateParams())

		assert.ErrorIs(t, err, dbErr)
		assert.Equal(t, 2, f.db.Begins)
		f.sync.AssertExpectations(t)
	})

	t.Run("Failed - validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(p *model.CreateEventParams)
		}{
			{"empty title", func(p *model.CreateEventParams) { p.Title = " " }},
			{"long title", func(p *model.CreateEventParams) { p.Title = string(make([]byte, 65)) }},
			{"empty description", func(p *model.CreateEventParams) { p.Description = "" }},
			{"missing type", func(p *model.CreateEventParams) { p.EventTypeID = 0 }},
			{"negative capacity", func(p *model.CreateEventParams) { p.Capacity = -1 }},
			{"ends before starts", func(p *model.CreateEventParams) { p.Ends = p.Starts.Add(-time.Minute) }},
			{"zero length", func(p *model.CreateEventParams) { p.Ends = p.Starts }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, f := setupEventService()
				params := validCreateParams()
				tt.mutate(&params)

				_, err := svc.Create(ctx, 7, params)

				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				f.gateway.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Failed - unknown event type", func(t *testing.T) {
		svc, f := setupEventService()

		f.userRepo.On("FindByID", ctx, 7).Return(creator, nil).Once()
		f.eventTypeRepo.On("FindByID", ctx, 2).Return(nil, apperrors.ErrEventTypeNotFound).Once()

		_, err := svc.Create(ctx, 7, validCreateParams())

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventService_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, f := setupEventService()
	tx := f.db.Tx
	locationID := 4
	starts := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)

	f.eventRepo.On("FindByID", ctx, 10).Return(&model.Event{
		ID: 10, Title: "Intro to Rubrics", Description: "Hands-on session",
		EventTypeID: 2, LocationID: &locationID, Capacity: 15,
	}, nil).Once()
	f.userRepo.On("FindByID", ctx, 7).Return(&model.User{ID: 7, Email: "creator@school.org"}, nil).Once()
	f.eventTypeRepo.On("FindByID", ctx, 2).Return(&model.EventType{ID: 2}, nil).Once()
	f.gateway.On("CreateEvent", mock.Anything, mock.MatchedBy(func(in calendar.CreateEventInput) bool {
		return in.Starts.Equal(starts) && in.Title == "Intro to Rubrics"
	}), mock.Anything).Return(&calendar.Response{ID: "ext999"}, nil).Once()
	f.eventRepo.On("Create", mock.Anything, tx, mock.MatchedBy(func(e *model.Event) bool {
		return e.Capacity == 15 && *e.LocationID == 4 && e.Starts.Equal(starts)
	})).Return(&model.Event{ID: 12, Capacity: 15, ExtCalendar: "ext999"}, nil).Once()
	f.presenters.On("AssignInTx", mock.Anything, tx, 12, 7).Return(&model.Presenter{}, false, nil).Once()
	f.ledger.On("InvalidateSeats", mock.Anything, 12).Once()

	resp, err := svc.Duplicate(ctx, 7, 10, model.DuplicateEventParams{Starts: starts, Ends: starts.Add(time.Hour)})

	require.NoError(t, err)
	assert.Equal(t, 12, resp.ID)
	f.eventRepo.AssertExpectations(t)
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	starts := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	current := &model.Event{ID: 1, Capacity: 10, Starts: starts, Ends: starts.Add(time.Hour), ExtCalendar: "ext123"}

	t.Run("Failed - capacity below registrations", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx
		capacity := 2

		f.eventRepo.On("FindByIDWithLock", ctx, tx, 1).Return(current, nil).Once()
		f.registrationRepo.On("CountByEventTx", ctx, tx, 1).Return(3, nil).Once()

		_, err := svc.Update(ctx, 1, model.UpdateEventParams{Capacity: &capacity})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.eventRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success - time change enqueues update", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx
		newEnds := starts.Add(2 * time.Hour)
		updatedAt := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
		params := model.UpdateEventParams{Ends: &newEnds}
		op := &model.SyncOperation{ID: 60}

		f.eventRepo.On("FindByIDWithLock", ctx, tx, 1).Return(current, nil).Once()
		f.eventRepo.On("Update", ctx, tx, 1, params).Return(&model.Event{
			ID: 1, Capacity: 10, Starts: starts, Ends: newEnds, ExtCalendar: "ext123", UpdatedAt: updatedAt,
		}, nil).Once()
		f.gateway.On("Location").Return(time.UTC)
		f.sync.On("Enqueue", ctx, tx, mock.MatchedBy(func(in service.SyncIntent) bool {
			return in.Kind == model.SyncKindUpdate && in.ExtCalendar == "ext123" && in.Generation.Equal(updatedAt)
		})).Return(op, nil).Once()
		f.sync.On("Notify", ctx, []*model.SyncOperation{op}).Once()
		f.ledger.On("InvalidateSeats", ctx, 1).Once()
		f.ledger.On("AvailableSeats", ctx, 1).Return(4, nil).Once()

		resp, err := svc.Update(ctx, 1, params)

		require.NoError(t, err)
		assert.Equal(t, 4, resp.Available)
		f.sync.AssertExpectations(t)
	})

	t.Run("Success - title change does not sync", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx
		title := "Rubrics II"
		params := model.UpdateEventParams{Title: &title}

		f.eventRepo.On("FindByIDWithLock", ctx, tx, 1).Return(current, nil).Once()
		f.eventRepo.On("Update", ctx, tx, 1, params).Return(&model.Event{ID: 1, Title: title}, nil).Once()
		f.sync.On("Notify", ctx, []*model.SyncOperation{nil}).Once()
		f.ledger.On("InvalidateSeats", ctx, 1).Once()
		f.ledger.On("AvailableSeats", ctx, 1).Return(10, nil).Once()

		_, err := svc.Update(ctx, 1, params)

		require.NoError(t, err)
		f.sync.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - starts after current ends", func(t *testing.T) {
		svc, f := setupEventService()
		newStarts := starts.Add(3 * time.Hour)

		f.eventRepo.On("FindByIDWithLock", ctx, f.db.Tx, 1).Return(current, nil).Once()

		_, err := svc.Update(ctx, 1, model.UpdateEventParams{Starts: &newStarts})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - empty update", func(t *testing.T) {
		svc, _ := setupEventService()

		_, err := svc.Update(ctx, 1, model.UpdateEventParams{})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, f := setupEventService()
		tx := f.db.Tx
		op := &model.SyncOperation{ID: 70}

		f.eventRepo.On("FindByIDWithLock", ctx, tx, 1).Return(&model.Event{ID: 1, ExtCalendar: "ext123"}, nil).Once()
		f.sync.On("Enqueue", ctx, tx, service.SyncIntent{
			Kind:        model.SyncKindDelete,
			EventID:     1,
			ExtCalendar: "ext123",
		}).Return(op, nil).Once()
		f.eventRepo.On("Delete", ctx, tx, 1).Return(nil).Once()
		f.sync.On("Notify", ctx, []*model.SyncOperation{op}).Once()
		f.ledger.On("InvalidateSeats", ctx, 1).Once()

		require.NoError(t, svc.Delete(ctx, 1))
		assert.True(t, tx.Committed)
		f.eventRepo.AssertExpectations(t)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		svc, f := setupEventService()

		f.eventRepo.On("FindByIDWithLock", ctx, f.db.Tx, 404).Return(nil, apperrors.ErrEventNotFound).Once()

		assert.ErrorIs(t, svc.Delete(ctx, 404), apperrors.ErrEventNotFound)
	})
}

func TestEventService_GetAndList(t *testing.T) {
	ctx := context.Background()
	svc, f := setupEventService()

	f.eventRepo.On("FindByID", ctx, 1).Return(&model.Event{ID: 1, Capacity: 5}, nil).Once()
	f.linkRepo.On("ListByEvent", ctx, 1).Return([]*model.EventLink{{ID: 1, EventID: 1}}, nil).Once()
	f.ledger.On("AvailableSeats", ctx, 1).Return(3, nil)
	f.ledger.On("AvailableSeats", ctx, 2).Return(0, nil)
	f.eventRepo.On("List", ctx, false, mock.Anything).Return([]*model.Event{{ID: 1}, {ID: 2}}, nil).Once()

	resp, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Available)
	assert.Len(t, resp.Links, 1)

	list, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[1].Available)
}
