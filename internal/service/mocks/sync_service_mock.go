package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type SyncServiceMock struct {
	mock.Mock
}

func NewSyncServiceMock() *SyncServiceMock {
	return &SyncServiceMock{}
}

func (m *SyncServiceMock) Enqueue(ctx context.Context, tx pgx.Tx, intent service.SyncIntent) (*model.SyncOperation, error) {
	args := m.Called(ctx, tx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SyncOperation), args.Error(1)
}

func (m *SyncServiceMock) Notify(ctx context.Context, ops ...*model.SyncOperation) {
	m.Called(ctx, ops)
}

func (m *SyncServiceMock) Deliver(ctx context.Context, opID int64) error {
	args := m.Called(ctx, opID)
	return args.Error(0)
}

func (m *SyncServiceMock) RepublishDue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *SyncServiceMock) ListByEvent(ctx context.Context, eventID int) ([]*model.SyncOperation, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SyncOperation), args.Error(1)
}
