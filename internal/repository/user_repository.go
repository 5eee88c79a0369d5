package repository

import (
	"context"
	"errors"

	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, tier, created_at, updated_at`

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByIDs(ctx context.Context, ids []int) ([]*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Transaction methods
	FindByIDTx(ctx context.Context, tx pgx.Tx, id int) (*model.User, error)
	PromoteTier(ctx context.Context, tx pgx.Tx, id int, tier model.Tier) (bool, error)
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Tier,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.Tier == 0 {
		user.Tier = model.TierDefault
	}

	query := `
		INSERT INTO users (name, email, tier)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, user.Name, user.Email, user.Tier))
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY name ASC`
	return r.list(ctx, query)
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) AND deleted_at IS NULL ORDER BY id ASC`
	return r.list(ctx, query, ids)
}

func (r *UserRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepositoryImpl) FindByIDTx(ctx context.Context, tx pgx.Tx, id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return scanUser(tx.QueryRow(ctx, query, id))
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// PromoteTier 只會往高權限調整 (tier 數字變小)，回傳是否真的有更新
func (r *UserRepositoryImpl) PromoteTier(ctx context.Context, tx pgx.Tx, id int, tier model.Tier) (bool, error) {
	query := `
		UPDATE users
		SET tier = $1, updated_at = NOW()
		WHERE id = $2 AND tier > $1 AND deleted_at IS NULL
	`
	result, err := tx.Exec(ctx, query, tier, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
