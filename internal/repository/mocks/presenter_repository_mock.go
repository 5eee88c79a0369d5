package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type PresenterRepositoryMock struct {
	mock.Mock
}

func NewPresenterRepositoryMock() *PresenterRepositoryMock {
	return &PresenterRepositoryMock{}
}

func (m *PresenterRepositoryMock) ListByEvent(ctx context.Context, eventID int) ([]*model.Presenter, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Presenter), args.Error(1)
}

func (m *PresenterRepositoryMock) ListByUser(ctx context.Context, userID int) ([]*model.Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *PresenterRepositoryMock) Assign(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Presenter, bool, error) {
	args := m.Called(ctx, tx, eventID, userID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.Presenter), args.Bool(1), args.Error(2)
}

func (m *PresenterRepositoryMock) Remove(ctx context.Context, tx pgx.Tx, eventID int, userID int) error {
	args := m.Called(ctx, tx, eventID, userID)
	return args.Error(0)
}
