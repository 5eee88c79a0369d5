package repository_test

import (
	"context"
	"testing"

	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	"go-gin-pd-registration/internal/testutil"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_FindByID(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userID := testutil.CreateUser(t, pool, "finder", int(model.TierObserver))

		found, err := repo.FindByID(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "finder@school.org", found.Email)
		assert.Equal(t, model.TierObserver, found.Tier)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("FindByIDs skips unknown ids", func(t *testing.T) {
		a := testutil.CreateUser(t, pool, "bulk-a", int(model.TierDefault))
		b := testutil.CreateUser(t, pool, "bulk-b", int(model.TierDefault))

		users, err := repo.FindByIDs(ctx, []int{a, b, 99999})

		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestUserRepository_PromoteTier(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	promote := func(userID int) bool {
		var promoted bool
		require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			var err error
			promoted, err = repo.PromoteTier(ctx, tx, userID, model.TierPresenter)
			return err
		}))
		return promoted
	}

	tests := []struct {
		name    string
		tier    model.Tier
		want    bool
		expects model.Tier
	}{
		{"default is promoted", model.TierDefault, true, model.TierPresenter},
		{"observer is promoted", model.TierObserver, true, model.TierPresenter},
		{"presenter is unchanged", model.TierPresenter, false, model.TierPresenter},
		{"admin is never demoted", model.TierAdmin, false, model.TierAdmin},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := testutil.CreateUser(t, pool, "tier"+string(rune('a'+i)), int(tt.tier))

			assert.Equal(t, tt.want, promote(userID))

			user, err := repo.FindByID(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.expects, user.Tier)
		})
	}
}
