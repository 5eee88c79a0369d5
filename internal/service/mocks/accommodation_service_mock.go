package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type AccommodationServiceMock struct {
	mock.Mock
}

func NewAccommodationServiceMock() *AccommodationServiceMock {
	return &AccommodationServiceMock{}
}

func (m *AccommodationServiceMock) Record(ctx context.Context, tx pgx.Tx, eventID int, requestedBy *int, required bool, note string) (*model.AccommodationNote, error) {
	args := m.Called(ctx, tx, eventID, requestedBy, required, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccommodationNote), args.Error(1)
}

func (m *AccommodationServiceMock) ListByEvent(ctx context.Context, eventID int) ([]*model.AccommodationNote, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AccommodationNote), args.Error(1)
}
