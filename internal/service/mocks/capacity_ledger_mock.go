package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type CapacityLedgerMock struct {
	mock.Mock
}

func NewCapacityLedgerMock() *CapacityLedgerMock {
	return &CapacityLedgerMock{}
}

func (m *CapacityLedgerMock) AvailableSeats(ctx context.Context, eventID int) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *CapacityLedgerMock) ReserveSeat(ctx context.Context, tx pgx.Tx, event *model.Event, userID int, force bool) (*model.Registration, error) {
	args := m.Called(ctx, tx, event, userID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *CapacityLedgerMock) ReserveSeats(ctx context.Context, tx pgx.Tx, event *model.Event, userIDs []int, force bool) ([]*model.Registration, map[int]bool, error) {
	args := m.Called(ctx, tx, event, userIDs, force)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*model.Registration), args.Get(1).(map[int]bool), args.Error(2)
}

func (m *CapacityLedgerMock) InvalidateSeats(ctx context.Context, eventID int) {
	m.Called(ctx, eventID)
}
