package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/calendar"
	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	apperrors "go-gin-pd-registration/pkg/app_errors"
	"go-gin-pd-registration/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	titleMaxLength       = 64
	descriptionMaxLength = 3000
)

type EventService interface {
	// 先建立外部行事曆事件，成功後才寫入資料庫
	Create(ctx context.Context, creatorID int, params model.CreateEventParams) (*model.EventResponse, error)
	// 複製來源場次的內容到新時段
	Duplicate(ctx context.Context, creatorID int, sourceID int, params model.DuplicateEventParams) (*model.EventResponse, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.EventResponse, error)
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*model.EventResponse, error)
	// includeAll=false 只列出開放中且尚未開始的場次
	List(ctx context.Context, includeAll bool) ([]*model.EventResponse, error)
}

type EventServiceImpl struct {
	db                     database.TxBeginner
	repository             repository.EventRepository
	registrationRepository repository.RegistrationRepository
	eventTypeRepository    repository.EventTypeRepository
	userRepository         repository.UserRepository
	linkRepository         repository.LinkRepository
	presenterService       PresenterService
	syncService            SyncService
	ledger                 CapacityLedger
	gateway                calendar.Gateway
	calendarConfig         config.CalendarConfig
	tracer                 trace.Tracer
	now                    func() time.Time
}

func NewEventService(
	db database.TxBeginner,
	eventRepository repository.EventRepository,
	registrationRepository repository.RegistrationRepository,
	eventTypeRepository repository.EventTypeRepository,
	userRepository repository.UserRepository,
	linkRepository repository.LinkRepository,
	presenterService PresenterService,
	syncService SyncService,
	ledger CapacityLedger,
	gateway calendar.Gateway,
	calendarConfig config.CalendarConfig,
	tracer trace.Tracer,
) EventService {
	return &EventServiceImpl{
		db:                     db,
		repository:             eventRepository,
		registrationRepository: registrationRepository,
		eventTypeRepository:    eventTypeRepository,
		userRepository:         userRepository,
		linkRepository:         linkRepository,
		presenterService:       presenterService,
		syncService:            syncService,
		ledger:                 ledger,
		gateway:                gateway,
		calendarConfig:         calendarConfig,
		tracer:                 tracer,
		now:                    time.Now,
	}
}

func validateCreate(params model.CreateEventParams) error {
	title := strings.TrimSpace(params.Title)
	description := strings.TrimSpace(params.Description)
	switch {
	case title == "" || utf8.RuneCountInString(title) > titleMaxLength:
		return fmt.Errorf("%w: title must be 1-%d characters", apperrors.ErrInvalidInput, titleMaxLength)
	case description == "" || utf8.RuneCountInString(description) > descriptionMaxLength:
		return fmt.Errorf("%w: description must be 1-%d characters", apperrors.ErrInvalidInput, descriptionMaxLength)
	case params.EventTypeID <= 0:
		return fmt.Errorf("%w: event type is required", apperrors.ErrInvalidInput)
	case params.Capacity < 0:
		return fmt.Errorf("%w: capacity must not be negative", apperrors.ErrInvalidInput)
	case params.Starts.IsZero() || params.Ends.IsZero() || !params.Starts.Before(params.Ends):
		return fmt.Errorf("%w: starts must be before ends", apperrors.ErrInvalidInput)
	}
	return nil
}

func (s *EventServiceImpl) Create(ctx context.Context, creatorID int, params model.CreateEventParams) (*model.EventResponse, error) {
	if err := validateCreate(params); err != nil {
		return nil, err
	}

	creator, err := s.userRepository.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	eventType, err := s.eventTypeRepository.FindByID(ctx, params.EventTypeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventTypeNotFound) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "event.create",
		trace.WithAttributes(
			attribute.Int("event.creator_id", creator.ID),
			attribute.Bool("event.conference", eventType.RequiresConference),
		),
	)
	defer span.End()

	log := logger.WithComponent("service").With(zap.Int("creator_id", creator.ID))

	// 1. 同步建立外部事件；失敗則不寫入任何資料
	resp, err := s.gateway.CreateEvent(ctx, calendar.CreateEventInput{
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		Starts:       params.Starts,
		Ends:         params.Ends,
		CreatorEmail: creator.Email,
		Conference:   eventType.RequiresConference,
	}, uuid.New())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("event.ext_calendar", resp.ID))

	// 2. 單一交易：場次、講者指派 (含升級)、會議連結
	var event *model.Event
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		event, err = s.repository.Create(ctx, tx, &model.Event{
			Title:       strings.TrimSpace(params.Title),
			Description: strings.TrimSpace(params.Description),
			EventTypeID: eventType.ID,
			LocationID:  params.LocationID,
			Capacity:    params.Capacity,
			Starts:      params.Starts,
			Ends:        params.Ends,
			Active:      true,
			ExtCalendar: resp.ID,
			CreatedBy:   &creator.ID,
		})
		if err != nil {
			return err
		}

		if _, _, err := s.presenterService.AssignInTx(ctx, tx, event.ID, creator.ID); err != nil {
			return err
		}

		if uri := resp.ConferenceURI(); uri != "" {
			linkType, err := s.linkRepository.FindTypeByName(ctx, tx, s.calendarConfig.ConferenceLinkType)
			if err != nil {
				return err
			}
			link, err := s.linkRepository.Create(ctx, tx, &model.EventLink{
				EventID:    event.ID,
				LinkTypeID: linkType.ID,
				Name:       s.calendarConfig.ConferenceLinkName,
				URI:        uri,
			})
			if err != nil {
				return err
			}
			event.Links = append(event.Links, link)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("create event failed after calendar event was created",
			zap.String("ext_calendar", resp.ID),
			zap.Error(err),
		)
		s.compensateCreate(ctx, resp.ID, creator)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	log.Info("event created",
		zap.Int("event_id", event.ID),
		zap.String("ext_calendar", event.ExtCalendar),
	)

	s.ledger.InvalidateSeats(ctx, event.ID)
	return &model.EventResponse{Event: event, Available: remainingSeats(event.Capacity, 0)}, nil
}

// compensateCreate 資料庫寫入失敗時，排入刪除外部事件的意圖
func (s *EventServiceImpl) compensateCreate(ctx context.Context, extCalendar string, creator *model.User) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithComponent("outbox").With(zap.String("ext_calendar", extCalendar))

	var op *model.SyncOperation
	err := database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		op, err = s.syncService.Enqueue(ctx, tx, SyncIntent{
			Kind:        model.SyncKindDelete,
			UserID:      creator.ID,
			ExtCalendar: extCalendar,
			UserEmail:   creator.Email,
			// 沒有本地場次 id，以時間區分不同次補償
			Generation: s.now(),
		})
		return err
	})
	if err != nil {
		log.Error("enqueue compensating delete failed, calendar event is orphaned", zap.Error(err))
		return
	}
	s.syncService.Notify(ctx, op)
}

func (s *EventServiceImpl) Duplicate(ctx context.Context, creatorID int, sourceID int, params model.DuplicateEventParams) (*model.EventResponse, error) {
	source, err := s.repository.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, creatorID, model.CreateEventParams{
		Title:       source.Title,
		Description: source.Description,
		EventTypeID: source.EventTypeID,
		LocationID:  source.LocationID,
		Capacity:    source.Capacity,
		Starts:      params.Starts,
		Ends:        params.Ends,
	})
}

func validateUpdate(params model.UpdateEventParams) error {
	if params.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", apperrors.ErrInvalidInput)
	}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" || utf8.RuneCountInString(title) > titleMaxLength {
			return fmt.Errorf("%w: title must be 1-%d characters", apperrors.ErrInvalidInput, titleMaxLength)
		}
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		if description == "" || utf8.RuneCountInString(description) > descriptionMaxLength {
			return fmt.Errorf("%w: description must be 1-%d characters", apperrors.ErrInvalidInput, descriptionMaxLength)
		}
	}
	if params.Capacity != nil && *params.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", apperrors.ErrInvalidInput)
	}
	return nil
}

func (s *EventServiceImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.EventResponse, error) {
	if err := validateUpdate(params); err != nil {
		return nil, err
	}

	var event *model.Event
	var op *model.SyncOperation
	err := database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		current, err := s.repository.FindByIDWithLock(ctx, tx, id)
		if err != nil {
			return err
		}

		starts, ends := current.Starts, current.Ends
		if params.Starts != nil {
			starts = *params.Starts
		}
		if params.Ends != nil {
			ends = *params.Ends
		}
		if !starts.Before(ends) {
			return fmt.Errorf("%w: starts must be before ends", apperrors.ErrInvalidInput)
		}

		if params.Capacity != nil {
			count, err := s.registrationRepository.CountByEventTx(ctx, tx, id)
			if err != nil {
				return err
			}
			if *params.Capacity < count {
				return fmt.Errorf("%w: capacity %d is below %d current registrations", apperrors.ErrInvalidInput, *params.Capacity, count)
			}
		}

		event, err = s.repository.Update(ctx, tx, id, params)
		if err != nil {
			return err
		}

		if !params.TimesChanged() {
			return nil
		}
		op, err = s.syncService.Enqueue(ctx, tx, SyncIntent{
			Kind:        model.SyncKindUpdate,
			EventID:     event.ID,
			ExtCalendar: event.ExtCalendar,
			Generation:  event.UpdatedAt,
			Payload:     calendar.NewTimesBody(event.Starts, event.Ends, s.gateway.Location()),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.syncService.Notify(ctx, op)
	s.ledger.InvalidateSeats(ctx, id)

	return s.decorate(ctx, event)
}

func (s *EventServiceImpl) Delete(ctx context.Context, id int) error {
	var op *model.SyncOperation
	err := database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		event, err := s.repository.FindByIDWithLock(ctx, tx, id)
		if err != nil {
			return err
		}

		// 沒有 FK 指向 events，刪除場次後意圖仍保留
		op, err = s.syncService.Enqueue(ctx, tx, SyncIntent{
			Kind:        model.SyncKindDelete,
			EventID:     event.ID,
			ExtCalendar: event.ExtCalendar,
		})
		if err != nil {
			return err
		}

		return s.repository.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.syncService.Notify(ctx, op)
	s.ledger.InvalidateSeats(ctx, id)

	logger.WithComponent("service").Info("event deleted", zap.Int("event_id", id))
	return nil
}

func (s *EventServiceImpl) Get(ctx context.Context, id int) (*model.EventResponse, error) {
	event, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	links, err := s.linkRepository.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list event links: %w", err)
	}
	event.Links = links

	return s.decorate(ctx, event)
}

func (s *EventServiceImpl) List(ctx context.Context, includeAll bool) ([]*model.EventResponse, error) {
	events, err := s.repository.List(ctx, includeAll, s.now())
	if err != nil {
		return nil, err
	}

	responses := make([]*model.EventResponse, 0, len(events))
	for _, event := range events {
		resp, err := s.decorate(ctx, event)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *EventServiceImpl) decorate(ctx context.Context, event *model.Event) (*model.EventResponse, error) {
	available, err := s.ledger.AvailableSeats(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &model.EventResponse{Event: event, Available: available}, nil
}
