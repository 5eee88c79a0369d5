package mocks

import (
	"context"
	"time"

	"go-gin-pd-registration/internal/calendar"
	"go-gin-pd-registration/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type GatewayMock struct {
	mock.Mock
}

func NewGatewayMock() *GatewayMock {
	return &GatewayMock{}
}

func (m *GatewayMock) CreateEvent(ctx context.Context, in calendar.CreateEventInput, key uuid.UUID) (*calendar.Response, error) {
	args := m.Called(ctx, in, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Response), args.Error(1)
}

func (m *GatewayMock) Deliver(ctx context.Context, op *model.SyncOperation) (*calendar.Response, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Response), args.Error(1)
}

func (m *GatewayMock) Location() *time.Location {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*time.Location)
}
