package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type RegistrationRepositoryMock struct {
	mock.Mock
}

func NewRegistrationRepositoryMock() *RegistrationRepositoryMock {
	return &RegistrationRepositoryMock{}
}

func (m *RegistrationRepositoryMock) Find(ctx context.Context, eventID int, userID int) (*model.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationRepositoryMock) ListByEvent(ctx context.Context, eventID int) ([]*model.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Registration), args.Error(1)
}

func (m *RegistrationRepositoryMock) ListByUser(ctx context.Context, userID int, attendedOnly bool) ([]*model.Registration, error) {
	args := m.Called(ctx, userID, attendedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Registration), args.Error(1)
}

func (m *RegistrationRepositoryMock) CountByEvent(ctx context.Context, eventID int) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *RegistrationRepositoryMock) Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, tx, registration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationRepositoryMock) Delete(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Registration, error) {
	args := m.Called(ctx, tx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationRepositoryMock) CountByEventTx(ctx context.Context, tx pgx.Tx, eventID int) (int, error) {
	args := m.Called(ctx, tx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *RegistrationRepositoryMock) SetAttended(ctx context.Context, tx pgx.Tx, eventID int, userID int, attended bool) (*model.Registration, error) {
	args := m.Called(ctx, tx, eventID, userID, attended)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationRepositoryMock) SetAttendedBulk(ctx context.Context, tx pgx.Tx, eventID int, userIDs []int, attended bool) (int64, error) {
	args := m.Called(ctx, tx, eventID, userIDs, attended)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RegistrationRepositoryMock) RegisteredUserIDs(ctx context.Context, tx pgx.Tx, eventID int, userIDs []int) ([]int, error) {
	args := m.Called(ctx, tx, eventID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}
