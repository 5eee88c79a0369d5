package service

import (
	"context"
	"fmt"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	"go-gin-pd-registration/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RegistrationService interface {
	// 報名：佔位、記錄需求、寫入 add_attendee 意圖
	Register(ctx context.Context, eventID int, userID int, req model.AccommodationRequest) (*model.Registration, error)
	// 明確設定出席狀態 (重複設定結果相同)
	SetAttendance(ctx context.Context, eventID int, userID int, attended bool) (*model.Registration, error)
	Cancel(ctx context.Context, eventID int, userID int) error
	BulkRegister(ctx context.Context, eventID int, userIDs []int, force bool) (*model.BulkResult, error)
	BulkSetAttendance(ctx context.Context, eventID int, userIDs []int, attended bool) (int64, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.Registration, error)
	// 使用者的報名與狀態；attendedOnly 只列已確認出席並附上時數
	ListByUser(ctx context.Context, userID int, attendedOnly bool) ([]*model.UserRegistration, error)
}

type RegistrationServiceImpl struct {
	db                      database.TxBeginner
	repository              repository.RegistrationRepository
	eventRepository         repository.EventRepository
	userRepository          repository.UserRepository
	accommodationRepository repository.AccommodationRepository
	ledger                  CapacityLedger
	accommodationService    AccommodationService
	syncService             SyncService
	forceSyncPolicy         string
}

func NewRegistrationService(
	db database.TxBeginner,
	registrationRepository repository.RegistrationRepository,
	eventRepository repository.EventRepository,
	userRepository repository.UserRepository,
	accommodationRepository repository.AccommodationRepository,
	ledger CapacityLedger,
	accommodationService AccommodationService,
	syncService SyncService,
	registrationConfig config.RegistrationConfig,
) RegistrationService {
	return &RegistrationServiceImpl{
		db:                      db,
		repository:              registrationRepository,
		eventRepository:         eventRepository,
		userRepository:          userRepository,
		accommodationRepository: accommodationRepository,
		ledger:                  ledger,
		accommodationService:    accommodationService,
		syncService:             syncService,
		forceSyncPolicy:         registrationConfig.ForceSyncPolicy,
	}
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, eventID int, userID int, req model.AccommodationRequest) (*model.Registration, error) {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var registration *model.Registration
	var op *model.SyncOperation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		event, err := s.eventRepository.FindByIDWithLock(ctx, tx, eventID)
		if err != nil {
			return err
		}

		registration, err = s.ledger.ReserveSeat(ctx, tx, event, userID, false)
		if err != nil {
			return err
		}

		if req.Required {
			if _, err := s.accommodationService.Record(ctx, tx, eventID, &user.ID, true, req.Note); err != nil {
				return err
			}
		}

		op, err = s.syncService.Enqueue(ctx, tx, SyncIntent{
			Kind:        model.SyncKindAddAttendee,
			EventID:     eventID,
			UserID:      userID,
			ExtCalendar: event.ExtCalendar,
			UserEmail:   user.Email,
			Generation:  registration.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.syncService.Notify(ctx, op)
	s.ledger.InvalidateSeats(ctx, eventID)

	logger.WithComponent("service").Info("user registered",
		zap.Int("event_id", eventID),
		zap.Int("user_id", userID),
		zap.Bool("accommodation_required", req.Required),
	)

	registration.User = user
	return registration, nil
}

func (s *RegistrationServiceImpl) SetAttendance(ctx context.Context, eventID int, userID int, attended bool) (*model.Registration, error) {
	var registration *model.Registration
	err := database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		registration, err = s.repository.SetAttended(ctx, tx, eventID, userID, attended)
		return err
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (s *RegistrationServiceImpl) Cancel(ctx context.Context, eventID int, userID int) error {
	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	var op *model.SyncOperation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// 與報名相同的鎖順序
		event, err := s.eventRepository.FindByIDWithLock(ctx, tx, eventID)
		if err != nil {
			return err
		}

		registration, err := s.repository.Delete(ctx, tx, eventID, userID)
		if err != nil {
			return err
		}

		if _, err := s.accommodationRepository.DeleteByEventAndUser(ctx, tx, eventID, userID); err != nil {
			return fmt.Errorf("delete accommodation notes: %w", err)
		}

		op, err = s.syncService.Enqueue(ctx, tx, SyncIntent{
			Kind:        model.SyncKindRemoveAttendee,
			EventID:     eventID,
			UserID:      userID,
			ExtCalendar: event.ExtCalendar,
			UserEmail:   user.Email,
			Generation:  registration.CreatedAt,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.syncService.Notify(ctx, op)
	s.ledger.InvalidateSeats(ctx, eventID)

	logger.WithComponent("service").Info("registration cancelled",
		zap.Int("event_id", eventID),
		zap.Int("user_id", userID),
	)
	return nil
}

func (s *RegistrationServiceImpl) BulkRegister(ctx context.Context, eventID int, userIDs []int, force bool) (*model.BulkResult, error) {
	ids := uniqueIDs(userIDs)

	users, err := s.userRepository.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	known := make(map[int]*model.User, len(users))
	for _, u := range users {
		known[u.ID] = u
	}

	result := &model.BulkResult{Registered: []int{}, Skipped: []int{}}
	var ops []*model.SyncOperation
	err = database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		event, err := s.eventRepository.FindByIDWithLock(ctx, tx, eventID)
		if err != nil {
			return err
		}

		existing, err := s.repository.RegisteredUserIDs(ctx, tx, eventID, ids)
		if err != nil {
			return fmt.Errorf("find existing registrations: %w", err)
		}
		registered := make(map[int]bool, len(existing))
		for _, id := range existing {
			registered[id] = true
		}

		candidates := make([]int, 0, len(ids))
		for _, id := range ids {
			if known[id] == nil || registered[id] {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			candidates = append(candidates, id)
		}
		if len(candidates) == 0 {
			return nil
		}

		registrations, overCapacity, err := s.ledger.ReserveSeats(ctx, tx, event, candidates, force)
		if err != nil {
			return err
		}

		for _, registration := range registrations {
			result.Registered = append(result.Registered, registration.UserID)
			if overCapacity[registration.UserID] && s.forceSyncPolicy == config.ForceSyncPolicySkip {
				continue
			}
			op, err := s.syncService.Enqueue(ctx, tx, SyncIntent{
				Kind:        model.SyncKindAddAttendee,
				EventID:     eventID,
				UserID:      registration.UserID,
				ExtCalendar: event.ExtCalendar,
				UserEmail:   known[registration.UserID].Email,
				Generation:  registration.CreatedAt,
			})
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.syncService.Notify(ctx, ops...)
	if len(result.Registered) > 0 {
		s.ledger.InvalidateSeats(ctx, eventID)
	}

	logger.WithComponent("service").Info("bulk registration",
		zap.Int("event_id", eventID),
		zap.Int("registered", len(result.Registered)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("force", force),
	)
	return result, nil
}

func (s *RegistrationServiceImpl) BulkSetAttendance(ctx context.Context, eventID int, userIDs []int, attended bool) (int64, error) {
	if _, err := s.eventRepository.FindByID(ctx, eventID); err != nil {
		return 0, err
	}

	var updated int64
	err := database.WithTx(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		updated, err = s.repository.SetAttendedBulk(ctx, tx, eventID, uniqueIDs(userIDs), attended)
		return err
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (s *RegistrationServiceImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.Registration, error) {
	if _, err := s.eventRepository.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repository.ListByEvent(ctx, eventID)
}

func (s *RegistrationServiceImpl) ListByUser(ctx context.Context, userID int, attendedOnly bool) ([]*model.UserRegistration, error) {
	if _, err := s.userRepository.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	registrations, err := s.repository.ListByUser(ctx, userID, attendedOnly)
	if err != nil {
		return nil, fmt.Errorf("list registrations of user %d: %w", userID, err)
	}

	out := make([]*model.UserRegistration, 0, len(registrations))
	for _, registration := range registrations {
		item := &model.UserRegistration{
			Registration: registration,
			State:        registration.State(),
		}
		if registration.Attended && registration.Event != nil {
			item.Hours = registration.Event.DurationHours()
		}
		out = append(out, item)
	}
	return out, nil
}

// uniqueIDs 去除重複並保留順序
func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
