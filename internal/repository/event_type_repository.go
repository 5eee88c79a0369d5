package repository

import (
	"context"
	"errors"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventTypeRepository interface {
	Create(ctx context.Context, eventType *model.EventType) (*model.EventType, error)
	List(ctx context.Context) ([]*model.EventType, error)
	FindByID(ctx context.Context, id int) (*model.EventType, error)
}

type EventTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventTypeRepository(pool *pgxpool.Pool) EventTypeRepository {
	return &EventTypeRepositoryImpl{
		pool: pool,
	}
}

func (r *EventTypeRepositoryImpl) Create(ctx context.Context, eventType *model.EventType) (*model.EventType, error) {
	query := `
		INSERT INTO event_types (name, description, requires_conference)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		eventType.Name, eventType.Description, eventType.RequiresConference,
	).Scan(&eventType.ID)
	if err != nil {
		return nil, err
	}
	return eventType, nil
}

func (r *EventTypeRepositoryImpl) List(ctx context.Context) ([]*model.EventType, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, requires_conference FROM event_types ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*model.EventType, 0)
	for rows.Next() {
		var eventType model.EventType
		if err := rows.Scan(&eventType.ID, &eventType.Name, &eventType.Description, &eventType.RequiresConference); err != nil {
			return nil, err
		}
		types = append(types, &eventType)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *EventTypeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.EventType, error) {
	var eventType model.EventType
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, requires_conference FROM event_types WHERE id = $1`, id,
	).Scan(&eventType.ID, &eventType.Name, &eventType.Description, &eventType.RequiresConference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventTypeNotFound
		}
		return nil, err
	}
	return &eventType, nil
}
