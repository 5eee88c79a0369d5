package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/stretchr/testify/mock"
)

type EventTypeRepositoryMock struct {
	mock.Mock
}

func NewEventTypeRepositoryMock() *EventTypeRepositoryMock {
	return &EventTypeRepositoryMock{}
}

func (m *EventTypeRepositoryMock) Create(ctx context.Context, eventType *model.EventType) (*model.EventType, error) {
	args := m.Called(ctx, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventType), args.Error(1)
}

func (m *EventTypeRepositoryMock) List(ctx context.Context) ([]*model.EventType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventType), args.Error(1)
}

func (m *EventTypeRepositoryMock) FindByID(ctx context.Context, id int) (*model.EventType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventType), args.Error(1)
}
