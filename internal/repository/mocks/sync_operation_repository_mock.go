package mocks

import (
	"context"
	"time"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type SyncOperationRepositoryMock struct {
	mock.Mock
}

func NewSyncOperationRepositoryMock() *SyncOperationRepositoryMock {
	return &SyncOperationRepositoryMock{}
}

func (m *SyncOperationRepositoryMock) FindByID(ctx context.Context, id int64) (*model.SyncOperation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SyncOperation), args.Error(1)
}

func (m *SyncOperationRepositoryMock) ListByEvent(ctx context.Context, eventID int) ([]*model.SyncOperation, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SyncOperation), args.Error(1)
}

func (m *SyncOperationRepositoryMock) ListDue(ctx context.Context, now time.Time, maxAttempts int, limit int) ([]*model.SyncOperation, error) {
	args := m.Called(ctx, now, maxAttempts, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SyncOperation), args.Error(1)
}

func (m *SyncOperationRepositoryMock) Claim(ctx context.Context, id int64, now time.Time, lease time.Duration, maxAttempts int) (*model.SyncOperation, error) {
	args := m.Called(ctx, id, now, lease, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SyncOperation), args.Error(1)
}

func (m *SyncOperationRepositoryMock) MarkSucceeded(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SyncOperationRepositoryMock) MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time) error {
	args := m.Called(ctx, id, lastError, nextAttemptAt)
	return args.Error(0)
}

func (m *SyncOperationRepositoryMock) Enqueue(ctx context.Context, tx pgx.Tx, op *model.SyncOperation) (*model.SyncOperation, bool, error) {
	args := m.Called(ctx, tx, op)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*model.SyncOperation), args.Bool(1), args.Error(2)
}
