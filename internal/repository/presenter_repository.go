package repository

import (
	"context"
	"errors"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PresenterRepository interface {
	ListByEvent(ctx context.Context, eventID int) ([]*model.Presenter, error)
	// 使用者擔任講者的場次
	ListByUser(ctx context.Context, userID int) ([]*model.Event, error)

	// Transaction methods
	Assign(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Presenter, bool, error)
	Remove(ctx context.Context, tx pgx.Tx, eventID int, userID int) error
}

type PresenterRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPresenterRepository(pool *pgxpool.Pool) PresenterRepository {
	return &PresenterRepositoryImpl{
		pool: pool,
	}
}

// Assign 已指派時不報錯，回傳既有的指派與 false
func (r *PresenterRepositoryImpl) Assign(ctx context.Context, tx pgx.Tx, eventID int, userID int) (*model.Presenter, bool, error) {
	query := `
		INSERT INTO event_presenters (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING event_id, user_id, created_at
	`
	presenter := model.Presenter{}
	err := tx.QueryRow(ctx, query, eventID, userID).Scan(
		&presenter.EventID,
		&presenter.UserID,
		&presenter.CreatedAt,
	)
	if err == nil {
		return &presenter, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	err = tx.QueryRow(ctx,
		`SELECT event_id, user_id, created_at FROM event_presenters WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&presenter.EventID, &presenter.UserID, &presenter.CreatedAt)
	if err != nil {
		return nil, false, err
	}
	return &presenter, false, nil
}

func (r *PresenterRepositoryImpl) Remove(ctx context.Context, tx pgx.Tx, eventID int, userID int) error {
	result, err := tx.Exec(ctx,
		`DELETE FROM event_presenters WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPresenterNotFound
	}

	return nil
}

func (r *PresenterRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.Presenter, error) {
	query := `
		SELECT p.event_id, p.user_id, p.created_at,
		       u.id, u.name, u.email, u.tier, u.created_at, u.updated_at
		FROM event_presenters p
		JOIN users u ON u.id = p.user_id
		WHERE p.event_id = $1
		ORDER BY u.name ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presenters := make([]*model.Presenter, 0)
	for rows.Next() {
		var presenter model.Presenter
		var user model.User
		err := rows.Scan(
			&presenter.EventID,
			&presenter.UserID,
			&presenter.CreatedAt,
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
		presenter.User = &user
		presenters = append(presenters, &presenter)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presenters, nil
}

func (r *PresenterRepositoryImpl) ListByUser(ctx context.Context, userID int) ([]*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id IN (SELECT event_id FROM event_presenters WHERE user_id = $1)
		ORDER BY starts ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
