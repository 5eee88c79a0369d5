package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type AccommodationRepositoryMock struct {
	mock.Mock
}

func NewAccommodationRepositoryMock() *AccommodationRepositoryMock {
	return &AccommodationRepositoryMock{}
}

func (m *AccommodationRepositoryMock) ListByEvent(ctx context.Context, eventID int) ([]*model.AccommodationNote, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AccommodationNote), args.Error(1)
}

func (m *AccommodationRepositoryMock) Create(ctx context.Context, tx pgx.Tx, note *model.AccommodationNote) (*model.AccommodationNote, error) {
	args := m.Called(ctx, tx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccommodationNote), args.Error(1)
}

func (m *AccommodationRepositoryMock) DeleteByEventAndUser(ctx context.Context, tx pgx.Tx, eventID int, userID int) (int64, error) {
	args := m.Called(ctx, tx, eventID, userID)
	return args.Get(0).(int64), args.Error(1)
}
