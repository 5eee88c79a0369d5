package mocks

import (
	"context"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type LinkRepositoryMock struct {
	mock.Mock
}

func NewLinkRepositoryMock() *LinkRepositoryMock {
	return &LinkRepositoryMock{}
}

func (m *LinkRepositoryMock) ListByEvent(ctx context.Context, eventID int) ([]*model.EventLink, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventLink), args.Error(1)
}

func (m *LinkRepositoryMock) FindTypeByName(ctx context.Context, tx pgx.Tx, name string) (*model.LinkType, error) {
	args := m.Called(ctx, tx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LinkType), args.Error(1)
}

func (m *LinkRepositoryMock) Create(ctx context.Context, tx pgx.Tx, link *model.EventLink) (*model.EventLink, error) {
	args := m.Called(ctx, tx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventLink), args.Error(1)
}
