package repository

import (
	"context"
	"fmt"

	"go-gin-pd-registration/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccommodationRepository interface {
	ListByEvent(ctx context.Context, eventID int) ([]*model.AccommodationNote, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, note *model.AccommodationNote) (*model.AccommodationNote, error)
	DeleteByEventAndUser(ctx context.Context, tx pgx.Tx, eventID int, userID int) (int64, error)
}

type AccommodationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewAccommodationRepository(pool *pgxpool.Pool) AccommodationRepository {
	return &AccommodationRepositoryImpl{
		pool: pool,
	}
}

// Create 寫入需求並透過 event_accommodations 關聯到場次
func (r *AccommodationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, note *model.AccommodationNote) (*model.AccommodationNote, error) {
	query := `
		INSERT INTO accommodation_notes (required, note, requested_by)
		VALUES ($1, $2, $3)
		RETURNING id, required, note, requested_by, created_at
	`

	created := model.AccommodationNote{EventID: note.EventID}
	err := tx.QueryRow(ctx, query, note.Required, note.Note, note.RequestedBy).Scan(
		&created.ID,
		&created.Required,
		&created.Note,
		&created.RequestedBy,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create accommodation note: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO event_accommodations (event_id, accommodation_id) VALUES ($1, $2)`,
		note.EventID, created.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to link accommodation note: %w", err)
	}

	return &created, nil
}

// DeleteByEventAndUser 移除該使用者在該場次提出的需求 (join 列隨 cascade 刪除)
func (r *AccommodationRepositoryImpl) DeleteByEventAndUser(ctx context.Context, tx pgx.Tx, eventID int, userID int) (int64, error) {
	query := `
		DELETE FROM accommodation_notes n
		USING event_accommodations ea
		WHERE ea.accommodation_id = n.id
		  AND ea.event_id = $1
		  AND n.requested_by = $2
	`
	result, err := tx.Exec(ctx, query, eventID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *AccommodationRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.AccommodationNote, error) {
	query := `
		SELECT n.id, ea.event_id, n.required, n.note, n.requested_by, n.created_at
		FROM accommodation_notes n
		JOIN event_accommodations ea ON ea.accommodation_id = n.id
		WHERE ea.event_id = $1
		ORDER BY n.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]*model.AccommodationNote, 0)
	for rows.Next() {
		var note model.AccommodationNote
		err := rows.Scan(
			&note.ID,
			&note.EventID,
			&note.Required,
			&note.Note,
			&note.RequestedBy,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}
