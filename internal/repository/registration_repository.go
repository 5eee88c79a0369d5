package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepository interface {
	Find(ctx context.Context, eventID int, userID int) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.Registration, error)
	CountByEvent(ctx context.Context, eventID int) (int, error)
	ListByUser(ctx context.Context, userID int, attendedOnly bool) ([]*model.Registration, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error)
	Delete(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Registration, error)
	CountByEventTx(ctx context.Context, tx pgx.Tx, eventID int) (int, error)
	SetAttended(ctx context.Context, tx pgx.Tx, eventID int, userID int, attended bool) (*model.Registration, error)
	SetAttendedBulk(ctx context.Context, tx pgx.Tx, eventID int, userIDs []int, attended bool) (int64, error)
	RegisteredUserIDs(ctx context.Context, tx pgx.Tx, eventID int, userIDs []int) ([]int, error)
}

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var registration model.Registration
	err := row.Scan(
		&registration.EventID,
		&registration.UserID,
		&registration.Attended,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}
	return &registration, nil
}

// Create 同一 (event, user) 只能有一筆，重複報名回傳 ErrAlreadyRegistered
func (r *RegistrationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error) {
	query := `
		INSERT INTO registrations (event_id, user_id, attended)
		VALUES ($1, $2, $3)
		RETURNING event_id, user_id, attended, created_at, updated_at
	`

	created, err := scanRegistration(tx.QueryRow(ctx, query,
		registration.EventID, registration.UserID, registration.Attended,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return created, nil
}

func (r *RegistrationRepositoryImpl) Find(ctx context.Context, eventID int, userID int) (*model.Registration, error) {
	query := `
		SELECT event_id, user_id, attended, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	return scanRegistration(r.pool.QueryRow(ctx, query, eventID, userID))
}

func (r *RegistrationRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.Registration, error) {
	query := `
		SELECT r.event_id, r.user_id, r.attended, r.created_at, r.updated_at,
		       u.id, u.name, u.email, u.tier, u.created_at, u.updated_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY u.name ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*model.Registration, 0)
	for rows.Next() {
		var registration model.Registration
		var user model.User
		err := rows.Scan(
			&registration.EventID,
			&registration.UserID,
			&registration.Attended,
			&registration.CreatedAt,
			&registration.UpdatedAt,
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Tier,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		registration.User = &user
		registrations = append(registrations, &registration)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

// ListByUser 使用者的報名連同場次，依開始時間排序；attendedOnly 只列已確認出席
func (r *RegistrationRepositoryImpl) ListByUser(ctx context.Context, userID int, attendedOnly bool) ([]*model.Registration, error) {
	query := `
		SELECT r.event_id, r.user_id, r.attended, r.created_at, r.updated_at,
		       e.id, e.title, e.description, e.event_type_id, e.location_id, e.capacity,
		       e.starts, e.ends, e.active, e.occurred, e.ext_calendar, e.created_by, e.created_at, e.updated_at
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
	`
	if attendedOnly {
		query += ` AND r.attended = TRUE`
	}
	query += ` ORDER BY e.starts ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*model.Registration, 0)
	for rows.Next() {
		var registration model.Registration
		var event model.Event
		err := rows.Scan(
			&registration.EventID,
			&registration.UserID,
			&registration.Attended,
			&registration.CreatedAt,
			&registration.UpdatedAt,
			&event.ID,
			&event.Title,
			&event.Description,
			&event.EventTypeID,
			&event.LocationID,
			&event.Capacity,
			&event.Starts,
			&event.Ends,
			&event.Active,
			&event.Occurred,
			&event.ExtCalendar,
			&event.CreatedBy,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		registration.Event = &event
		registrations = append(registrations, &registration)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *RegistrationRepositoryImpl) CountByEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByEventTx 必須在已鎖住場次列的交易內呼叫
func (r *RegistrationRepositoryImpl) CountByEventTx(ctx context.Context, tx pgx.Tx, eventID int) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RegistrationRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Registration, error) {
	query := `
		DELETE FROM registrations
		WHERE event_id = $1 AND user_id = $2
		RETURNING event_id, user_id, attended, created_at, updated_at
	`
	return scanRegistration(tx.QueryRow(ctx, query, eventID, userID))
}

// SetAttended 直接設定出席狀態，重複呼叫結果相同
func (r *RegistrationRepositoryImpl) SetAttended(ctx context.Context, tx pgx.Tx, eventID int, userID int, attended bool) (*model.Registration, error) {
	query := `
		UPDATE registrations
		SET attended = $1, updated_at = $2
		WHERE event_id = $3 AND user_id = $4
		RETURNING event_id, user_id, attended, created_at, updated_at
	`
	return scanRegistration(tx.QueryRow(ctx, query, attended, time.Now().UTC(), eventID, userID))
}

func (r *RegistrationRepositoryImpl) SetAttendedBulk(ctx context.Context, tx pgx.Tx, eventID int, userIDs []int, attended bool) (int64, error) {
	query := `
		UPDATE registrations
		SET attended = $1, updated_at = $2
		WHERE event_id = $3 AND user_id = ANY($4)
	`
	result, err := tx.Exec(ctx, query, attended, time.Now().UTC(), eventID, userIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// RegisteredUserIDs 回傳 userIDs 中已報名該場次者
func (r *RegistrationRepositoryImpl) RegisteredUserIDs(ctx context.Context, tx pgx.Tx, eventID int, userIDs []int) ([]int, error) {
	rows, err := tx.Query(ctx,
		`SELECT user_id FROM registrations WHERE event_id = $1 AND user_id = ANY($2)`,
		eventID, userIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
