package service

import (
	"context"

	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/internal/domain"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	"go-gin-pd-registration/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PresenterService interface {
	// 指派講者並加入外部行事曆；重複指派不報錯
	Assign(ctx context.Context, eventID int, userID int) (*model.Presenter, error)
	// 在呼叫端交易內指派，不寫同步意圖 (建立場次時創建者已是參與者)
	AssignInTx(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Presenter, bool, error)
	// 只移除指派，不調降角色
	Remove(ctx context.Context, eventID int, userID int) error
	List(ctx context.Context, eventID int) ([]*model.Presenter, error)
	ListByUser(ctx context.Context, userID int) ([]*model.Event, error)
}

type PresenterServiceImpl struct {
	db              database.TxBeginner
	repository      repository.PresenterRepository
	eventRepository repository.EventRepository
	userRepository  repository.UserRepository
	syncService     SyncService
	bus             *domain.Bus
}

func NewPresenterService(
	db database.TxBeginner,
	presenterRepository repository.PresenterRepository,
	eventRepository repository.EventRepository,
	userRepository repository.UserRepository,
	syncService SyncService,
	bus *domain.Bus,
) PresenterService {
	return &PresenterServiceImpl{
		db:              db,
		repository:      presenterRepository,
		eventRepository: eventRepository,
		userRepository:  userRepository,
		syncService:     syncService,
		bus:             bus,
	}
}

func (s *PresenterServiceImpl) Assign(ctx context.Context, eventID int, userID int) (*model.Presenter, error) {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var presenter *model.Presenter
	var op *model.SyncOperation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		event, err := s.eventRepository.FindByIDWithLock(ctx, tx, eventID)
		if err != nil {
			return err
		}

		var inserted bool
		presenter, inserted, err = s.AssignInTx(ctx, tx, eventID, userID)
		if err != nil || !inserted {
			return err
		}

		op, err = s.syncService.Enqueue(ctx, tx, SyncIntent{
			Kind:        model.SyncKindAddAttendee,
			EventID:     eventID,
			UserID:      userID,
			ExtCalendar: event.ExtCalendar,
			UserEmail:   user.Email,
			Generation:  presenter.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.syncService.Notify(ctx, op)

	presenter.User = user
	return presenter, nil
}

func (s *PresenterServiceImpl) AssignInTx(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Presenter, bool, error) {
	presenter, inserted, err := s.repository.Assign(ctx, tx, eventID, userID)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		return presenter, false, nil
	}

	err = s.bus.PresenterAssigned.Publish(ctx, tx, domain.PresenterAssigned{
		EventID:    eventID,
		UserID:     userID,
		AssignedAt: presenter.CreatedAt,
	})
	if err != nil {
		return nil, false, err
	}

	logger.WithComponent("service").Info("presenter assigned",
		zap.Int("event_id", eventID),
		zap.Int("user_id", userID),
	)
	return presenter, true, nil
}

func (s *PresenterServiceImpl) Remove(ctx context.Context, eventID int, userID int) error {
	return database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return s.repository.Remove(ctx, tx, eventID, userID)
	})
}

func (s *PresenterServiceImpl) List(ctx context.Context, eventID int) ([]*model.Presenter, error) {
	if _, err := s.eventRepository.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repository.ListByEvent(ctx, eventID)
}

func (s *PresenterServiceImpl) ListByUser(ctx context.Context, userID int) ([]*model.Event, error) {
	if _, err := s.userRepository.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repository.ListByUser(ctx, userID)
}
