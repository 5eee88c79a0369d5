package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/stretchr/testify/mock"
)

type RegistrationServiceMock struct {
	mock.Mock
}

func NewRegistrationServiceMock() *RegistrationServiceMock {
	return &RegistrationServiceMock{}
}

func (m *RegistrationServiceMock) Register(ctx context.Context, eventID int, userID int, req model.AccommodationRequest) (*model.Registration, error) {
	args := m.Called(ctx, eventID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) SetAttendance(ctx context.Context, eventID int, userID int, attended bool) (*model.Registration, error) {
	args := m.Called(ctx, eventID, userID, attended)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Cancel(ctx context.Context, eventID int, userID int) error {
	args := m.Called(ctx, eventID, userID)
	return args.Error(0)
}

func (m *RegistrationServiceMock) BulkRegister(ctx context.Context, eventID int, userIDs []int, force bool) (*model.BulkResult, error) {
	args := m.Called(ctx, eventID, userIDs, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BulkResult), args.Error(1)
}

func (m *RegistrationServiceMock) BulkSetAttendance(ctx context.Context, eventID int, userIDs []int, attended bool) (int64, error) {
	args := m.Called(ctx, eventID, userIDs, attended)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RegistrationServiceMock) ListByEvent(ctx context.Context, eventID int) ([]*model.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) ListByUser(ctx context.Context, userID int, attendedOnly bool) ([]*model.UserRegistration, error) {
	args := m.Called(ctx, userID, attendedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.UserRegistration), args.Error(1)
}
