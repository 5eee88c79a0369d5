package repository

import (
	"context"
	"errors"
	"fmt"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LinkRepository interface {
	ListByEvent(ctx context.Context, eventID int) ([]*model.EventLink, error)

	// Transaction methods
	FindTypeByName(ctx context.Context, tx pgx.Tx, name string) (*model.LinkType, error)
	Create(ctx context.Context, tx pgx.Tx, link *model.EventLink) (*model.EventLink, error)
}

type LinkRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewLinkRepository(pool *pgxpool.Pool) LinkRepository {
	return &LinkRepositoryImpl{
		pool: pool,
	}
}

func (r *LinkRepositoryImpl) FindTypeByName(ctx context.Context, tx pgx.Tx, name string) (*model.LinkType, error) {
	var linkType model.LinkType
	err := tx.QueryRow(ctx,
		`SELECT id, name, description FROM link_types WHERE name = $1`, name,
	).Scan(&linkType.ID, &linkType.Name, &linkType.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLinkTypeNotFound
		}
		return nil, err
	}
	return &linkType, nil
}

func (r *LinkRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, link *model.EventLink) (*model.EventLink, error) {
	query := `
		INSERT INTO event_links (event_id, link_type_id, name, uri)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query, link.EventID, link.LinkTypeID, link.Name, link.URI).Scan(
		&link.ID,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event link: %w", err)
	}
	return link, nil
}

func (r *LinkRepositoryImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.EventLink, error) {
	query := `
		SELECT id, event_id, link_type_id, name, uri, created_at
		FROM event_links
		WHERE event_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*model.EventLink, 0)
	for rows.Next() {
		var link model.EventLink
		err := rows.Scan(
			&link.ID,
			&link.EventID,
			&link.LinkTypeID,
			&link.Name,
			&link.URI,
			&link.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}
