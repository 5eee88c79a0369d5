package repository_test

import (
	"context"
	"testing"
	"time"

	"go-gin-pd-registration/internal/database"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	"go-gin-pd-registration/internal/testutil"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_CreateAndUpdate(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewEventRepository(pool)
	ctx := context.Background()

	typeID := testutil.CreateEventType(t, pool, "workshop", false)
	creatorID := testutil.CreateUser(t, pool, "creator", int(model.TierPresenter))
	starts := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	var created *model.Event
	require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		created, err = repo.Create(ctx, tx, &model.Event{
			Title:       "Math Circle",
			Description: "Problem solving",
			EventTypeID: typeID,
			Capacity:    12,
			Starts:      starts,
			Ends:        starts.Add(time.Hour),
			Active:      true,
			ExtCalendar: "ext-math",
			CreatedBy:   &creatorID,
		})
		return err
	}))
	assert.NotZero(t, created.ID)

	found, err := repo.FindByExtCalendar(ctx, "ext-math")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	title := "Math Circle II"
	capacity := 15
	require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		updated, err := repo.Update(ctx, tx, created.ID, model.UpdateEventParams{Title: &title, Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, 15, updated.Capacity)
		assert.Equal(t, "ext-math", updated.ExtCalendar)
		return nil
	}))
}

func TestEventRepository_List(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewEventRepository(pool)
	ctx := context.Background()

	typeID := testutil.CreateEventType(t, pool, "workshop", false)
	upcoming := testutil.CreateEvent(t, pool, typeID, 5)
	closed := testutil.CreateEvent(t, pool, typeID, 5)

	active := false
	require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := repo.Update(ctx, tx, closed, model.UpdateEventParams{Active: &active})
		return err
	}))

	open, err := repo.List(ctx, false, time.Now())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, upcoming, open[0].ID)

	all, err := repo.List(ctx, true, time.Now())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// 開始之後不再列出
	later, err := repo.List(ctx, false, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestEventRepository_Delete(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewEventRepository(pool)
	ctx := context.Background()

	eventID := testutil.CreateEvent(t, pool, testutil.CreateEventType(t, pool, "workshop", false), 5)

	require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return repo.Delete(ctx, tx, eventID)
	}))

	_, err := repo.FindByID(ctx, eventID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)

	err = database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return repo.Delete(ctx, tx, eventID)
	})
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestPresenterRepository_Assign(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewPresenterRepository(pool)
	ctx := context.Background()

	eventID := testutil.CreateEvent(t, pool, testutil.CreateEventType(t, pool, "workshop", false), 5)
	userID := testutil.CreateUser(t, pool, "speaker", int(model.TierDefault))

	assign := func() bool {
		var inserted bool
		require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			var err error
			_, inserted, err = repo.Assign(ctx, tx, eventID, userID)
			return err
		}))
		return inserted
	}

	assert.True(t, assign())
	assert.False(t, assign())

	presenters, err := repo.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, presenters, 1)

	require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return repo.Remove(ctx, tx, eventID, userID)
	}))
	err = database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return repo.Remove(ctx, tx, eventID, userID)
	})
	assert.ErrorIs(t, err, apperrors.ErrPresenterNotFound)
}

func TestPresenterRepository_ListByUser(t *testing.T) {
	pool := testutil.SetupDB(t)
	repo := repository.NewPresenterRepository(pool)
	ctx := context.Background()

	typeID := testutil.CreateEventType(t, pool, "workshop", false)
	presented := testutil.CreateEvent(t, pool, typeID, 5)
	testutil.CreateEvent(t, pool, typeID, 5)
	userID := testutil.CreateUser(t, pool, "speaker", int(model.TierPresenter))

	require.NoError(t, database.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, _, err := repo.Assign(ctx, tx, presented, userID)
		return err
	}))

	events, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, presented, events[0].ID)

	events, err = repo.ListByUser(ctx, 99999)
	require.NoError(t, err)
	assert.Empty(t, events)
}
