package mocks

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

// TxMock 只實作 Commit/Rollback；repository 皆為 mock，不會呼叫其他方法
type TxMock struct {
	pgx.Tx

	mu         sync.Mutex
	Committed  bool
	RolledBack bool
	CommitErr  error
}

func (t *TxMock) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

// Rollback 提交後呼叫為 no-op，與 pgx 行為相同
func (t *TxMock) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Committed {
		return pgx.ErrTxClosed
	}
	t.RolledBack = true
	return nil
}

// DBMock 每次 BeginTx 都回傳同一個 TxMock
type DBMock struct {
	Tx       *TxMock
	BeginErr error
	Begins   int
}

func NewDBMock() *DBMock {
	return &DBMock{Tx: &TxMock{}}
}

func (d *DBMock) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	d.Begins++
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}
	return d.Tx, nil
}
