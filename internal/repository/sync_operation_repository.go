package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const syncOperationColumns = `id, idempotency_key, kind, event_id, ext_calendar, user_email, payload,
		status, attempts, last_error, next_attempt_at, created_at, updated_at`

type SyncOperationRepository interface {
	FindByID(ctx context.Context, id int64) (*model.SyncOperation, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.SyncOperation, error)
	ListDue(ctx context.Context, now time.Time, maxAttempts int, limit int) ([]*model.SyncOperation, error)
	Claim(ctx context.Context, id int64, now time.Time, lease time.Duration, maxAttempts int) (*model.SyncOperation, error)
	MarkSucceeded(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time) error

	// Transaction methods
	Enqueue(ctx context.Context, tx pgx.Tx, op *model.SyncOperation) (*model.SyncOperation, bool, error)
}

type SyncOperationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSyncOperationRepository(pool *pgxpool.Pool) SyncOperationRepository {
	return &SyncOperationRepositoryImpl{
		pool: pool,
	}
}

func scanSyncOperation(row pgx.Row) (*model.SyncOperation, error) {
	var op model.SyncOperation
	err := row.Scan(
		&op.ID,
		&op.IdempotencyKey,
		&op.Kind,
		&op.EventID,
		&op.ExtCalendar,
		&op.UserEmail,
		&op.Payload,
		&op.Status,
		&op.Attempts,
		&op.LastError,
		&op.NextAttemptAt,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSyncOperationNotFound
		}
		return nil, err
	}
	return &op, nil
}

// Enqueue 寫入 outbox；idempotency_key 已存在時不重複寫入，回傳既有的那筆與 false
func (r *SyncOperationRepositoryImpl) Enqueue(ctx context.Context, tx pgx.Tx, op *model.SyncOperation) (*model.SyncOperation, bool, error) {
	query := `
		INSERT INTO sync_operations (
			idempotency_key, kind, event_id, ext_calendar, user_email, payload, status, next_attempt_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING ` + syncOperationColumns

	nextAttemptAt := op.NextAttemptAt
	if nextAttemptAt.IsZero() {
		nextAttemptAt = time.Now().UTC()
	}

	created, err := scanSyncOperation(tx.QueryRow(ctx, query,
		op.IdempotencyKey, op.Kind, op.EventID, op.ExtCalendar, op.UserEmail,
		nullableJSON(op.Payload), model.SyncStatusPending, nextAttemptAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, apperrors.ErrSyncOperationNotFound) {
		return nil, false, fmt.Errorf("failed to enqueue sync operation: %w", err)
	}

	existing, err := r.findByKey(ctx, tx, op.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *SyncOperationRepositoryImpl) findByKey(ctx context.Context, tx pgx.Tx, key uuid.UUID) (*model.SyncOperation, error) {
	query := `SELECT ` + syncOperationColumns + ` FROM sync_operations WHERE idempotency_key = $1`
	return scanSyncOperation(tx.QueryRow(ctx, query, key))
}

func (r *SyncOperationRepositoryImpl) FindByID(ctx context.Context, id int64) (*model.SyncOperation, error) {
	query := `SELECT ` + syncOperationColumns + ` FROM sync_operations WHERE id = $1`
	return scanSyncOperation(r.pool.QueryRow(ctx, query, id))
}

func (r *SyncOperationRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.SyncOperation, error) {
	query := `SELECT ` + syncOperationColumns + ` FROM sync_operations WHERE event_id = $1 ORDER BY id ASC`
	return r.list(ctx, query, eventID)
}

// ListDue 找出到期且尚未用完重試次數的同步意圖
func (r *SyncOperationRepositoryImpl) ListDue(ctx context.Context, now time.Time, maxAttempts int, limit int) ([]*model.SyncOperation, error) {
	query := `
		SELECT ` + syncOperationColumns + `
		FROM sync_operations
		WHERE status IN ('pending', 'failed')
		  AND next_attempt_at <= $1
		  AND attempts < $2
		ORDER BY next_attempt_at ASC
		LIMIT $3
	`
	return r.list(ctx, query, now, maxAttempts, limit)
}

func (r *SyncOperationRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]*model.SyncOperation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := make([]*model.SyncOperation, 0)
	for rows.Next() {
		op, err := scanSyncOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ops, nil
}

// Claim 原子地領取一筆同步意圖：attempts+1 並把 next_attempt_at 推到 lease 之後，
// 避免 worker 與 reconciler 同時投遞。無可領取時回傳 ErrSyncOperationNotFound
func (r *SyncOperationRepositoryImpl) Claim(ctx context.Context, id int64, now time.Time, lease time.Duration, maxAttempts int) (*model.SyncOperation, error) {
	query := `
		UPDATE sync_operations
		SET attempts = attempts + 1, next_attempt_at = $2, updated_at = $3
		WHERE id = $1
		  AND status IN ('pending', 'failed')
		  AND next_attempt_at <= $3
		  AND attempts < $4
		RETURNING ` + syncOperationColumns
	return scanSyncOperation(r.pool.QueryRow(ctx, query, id, now.Add(lease), now, maxAttempts))
}

func (r *SyncOperationRepositoryImpl) MarkSucceeded(ctx context.Context, id int64) error {
	query := `
		UPDATE sync_operations
		SET status = $1, last_error = '', updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.pool.Exec(ctx, query, model.SyncStatusSucceeded, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSyncOperationNotFound
	}
	return nil
}

func (r *SyncOperationRepositoryImpl) MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time) error {
	query := `
		UPDATE sync_operations
		SET status = $1, last_error = $2, next_attempt_at = $3, updated_at = NOW()
		WHERE id = $4 AND status <> $5
	`
	result, err := r.pool.Exec(ctx, query,
		model.SyncStatusFailed, lastError, nextAttemptAt, id, model.SyncStatusSucceeded,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSyncOperationNotFound
	}
	return nil
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
