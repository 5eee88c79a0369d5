package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, event_type_id, location_id, capacity,
		starts, ends, active, occurred, ext_calendar, created_by, created_at, updated_at`

type EventRepository interface {
	List(ctx context.Context, includeAll bool, now time.Time) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	FindByExtCalendar(ctx context.Context, extCalendar string) (*model.Event, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, event *model.Event) (*model.Event, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error)
	Update(ctx context.Context, tx pgx.Tx, id int, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, tx pgx.Tx, id int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (
			title, description, event_type_id, location_id, capacity,
			starts, ends, active, ext_calendar, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + eventColumns

	created, err := scanEvent(tx.QueryRow(ctx, query,
		event.Title, event.Description, event.EventTypeID, event.LocationID, event.Capacity,
		event.Starts, event.Ends, event.Active, event.ExtCalendar, event.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// List 預設只列出啟用中且尚未開始的場次
func (r *EventRepositoryImpl) List(ctx context.Context, includeAll bool, now time.Time) ([]*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []interface{}{}
	if !includeAll {
		query += ` WHERE active = TRUE AND starts > $1`
		args = append(args, now)
	}
	query += ` ORDER BY starts ASC`

	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) FindByExtCalendar(ctx context.Context, extCalendar string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE ext_calendar = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, extCalendar))
}

// FindByIDWithLock 鎖住場次列，報名/取消/調整名額都要先拿到這把鎖
func (r *EventRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return scanEvent(tx.QueryRow(ctx, query, id))
}

func (r *EventRepositoryImpl) Update(ctx context.Context, tx pgx.Tx, id int, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.LocationID != nil {
		add("location_id", *params.LocationID)
	}
	if params.Capacity != nil {
		add("capacity", *params.Capacity)
	}
	if params.Active != nil {
		add("active", *params.Active)
	}
	if params.Starts != nil {
		add("starts", *params.Starts)
	}
	if params.Ends != nil {
		add("ends", *params.Ends)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	add("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	return scanEvent(tx.QueryRow(ctx, query, args...))
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, tx pgx.Tx, id int) error {
	result, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
