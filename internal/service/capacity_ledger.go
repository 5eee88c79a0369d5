package service

import (
	"context"
	"errors"
	"fmt"

	"go-gin-pd-registration/internal/cache"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	apperrors "go-gin-pd-registration/pkg/app_errors"
	"go-gin-pd-registration/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CapacityLedger 名額帳本。
// 上限判斷一律在交易內以資料庫計數為準，快取只供顯示。
// 佔位方法收到的 event 必須是呼叫端在同一交易內以 FindByIDWithLock 鎖住的場次列。
type CapacityLedger interface {
	AvailableSeats(ctx context.Context, eventID int) (int, error)
	// 在呼叫端交易內佔一個名額並建立報名
	ReserveSeat(ctx context.Context, tx pgx.Tx, event *model.Event, userID int, force bool) (*model.Registration, error)
	// 批次佔位：全部成功或全部失敗。回傳的 overCapacity 為超出上限 (force) 的 user
	ReserveSeats(ctx context.Context, tx pgx.Tx, event *model.Event, userIDs []int, force bool) (registrations []*model.Registration, overCapacity map[int]bool, err error)
	// 交易提交後清除快取，下次讀取時重算
	InvalidateSeats(ctx context.Context, eventID int)
}

type CapacityLedgerImpl struct {
	eventRepository        repository.EventRepository
	registrationRepository repository.RegistrationRepository
	seatCache              cache.SeatCache
}

func NewCapacityLedger(
	eventRepository repository.EventRepository,
	registrationRepository repository.RegistrationRepository,
	seatCache cache.SeatCache,
) CapacityLedger {
	return &CapacityLedgerImpl{
		eventRepository:        eventRepository,
		registrationRepository: registrationRepository,
		seatCache:              seatCache,
	}
}

func remainingSeats(capacity, count int) int {
	if count >= capacity {
		return 0
	}
	return capacity - count
}

func (l *CapacityLedgerImpl) AvailableSeats(ctx context.Context, eventID int) (int, error) {
	available, err := l.seatCache.GetAvailable(ctx, eventID)
	if err == nil {
		return available, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.WithComponent("cache").Warn("seat cache read failed",
			zap.Int("event_id", eventID),
			zap.Error(err),
		)
	}

	available, err = l.countAvailable(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if err := l.seatCache.SetAvailable(ctx, eventID, available); err != nil {
		logger.WithComponent("cache").Warn("seat cache write failed",
			zap.Int("event_id", eventID),
			zap.Error(err),
		)
	}
	return available, nil
}

func (l *CapacityLedgerImpl) countAvailable(ctx context.Context, eventID int) (int, error) {
	event, err := l.eventRepository.FindByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	count, err := l.registrationRepository.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return remainingSeats(event.Capacity, count), nil
}

// openSeatCount 確認場次可報名，回傳目前報名數
func (l *CapacityLedgerImpl) openSeatCount(ctx context.Context, tx pgx.Tx, event *model.Event) (int, error) {
	if !event.IsOpen() {
		return 0, apperrors.ErrEventInactive
	}

	count, err := l.registrationRepository.CountByEventTx(ctx, tx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (l *CapacityLedgerImpl) ReserveSeat(ctx context.Context, tx pgx.Tx, event *model.Event, userID int, force bool) (*model.Registration, error) {
	eventID := event.ID
	count, err := l.openSeatCount(ctx, tx, event)
	if err != nil {
		return nil, err
	}
	if !force && count >= event.Capacity {
		// 已報名者重複報名仍回 Conflict，不論名額
		registered, err := l.registrationRepository.RegisteredUserIDs(ctx, tx, eventID, []int{userID})
		if err != nil {
			return nil, fmt.Errorf("check existing registration: %w", err)
		}
		if len(registered) > 0 {
			return nil, apperrors.ErrAlreadyRegistered
		}
		return nil, apperrors.ErrSeatsExhausted
	}

	return l.registrationRepository.Create(ctx, tx, &model.Registration{
		EventID: eventID,
		UserID:  userID,
	})
}

func (l *CapacityLedgerImpl) ReserveSeats(ctx context.Context, tx pgx.Tx, event *model.Event, userIDs []int, force bool) ([]*model.Registration, map[int]bool, error) {
	count, err := l.openSeatCount(ctx, tx, event)
	if err != nil {
		return nil, nil, err
	}

	remaining := remainingSeats(event.Capacity, count)
	if !force && len(userIDs) > remaining {
		return nil, nil, fmt.Errorf("%w: %d requested, %d remaining", apperrors.ErrSeatsExhausted, len(userIDs), remaining)
	}

	registrations := make([]*model.Registration, 0, len(userIDs))
	overCapacity := make(map[int]bool)
	for i, userID := range userIDs {
		registration, err := l.registrationRepository.Create(ctx, tx, &model.Registration{
			EventID: event.ID,
			UserID:  userID,
		})
		if err != nil {
			return nil, nil, err
		}
		registrations = append(registrations, registration)
		if i >= remaining {
			overCapacity[userID] = true
		}
	}
	return registrations, overCapacity, nil
}

// InvalidateSeats 只清除不回寫：提交後的重算彼此可能亂序完成，舊的計數會蓋掉新的
func (l *CapacityLedgerImpl) InvalidateSeats(ctx context.Context, eventID int) {
	ctx = context.WithoutCancel(ctx)
	if err := l.seatCache.Invalidate(ctx, eventID); err != nil {
		logger.WithComponent("cache").Warn("seat cache invalidate failed",
			zap.Int("event_id", eventID),
			zap.Error(err),
		)
	}
}
