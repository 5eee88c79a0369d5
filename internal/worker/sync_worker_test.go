package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/queue"
	serviceMocks "go-gin-pd-registration/internal/service/mocks"
	"go-gin-pd-registration/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSyncWorker_Start(t *testing.T) {
	t.Run("Delivers published operation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		q := queue.NewMemorySyncQueue(10)
		svc := serviceMocks.NewSyncServiceMock()

		called := make(chan int64, 1)
		svc.On("Deliver", mock.Anything, int64(42)).Run(func(args mock.Arguments) {
			called <- args.Get(1).(int64)
		}).Return(nil).Once()

		require.NoError(t, worker.NewSyncWorker(svc, q).Start(ctx))
		require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 42}))

		select {
		case id := <-called:
			assert.Equal(t, int64(42), id)
		case <-time.After(time.Second):
			t.Fatal("worker did not deliver the operation in time")
		}
	})

	t.Run("Infrastructure error is not redelivered in a loop", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		q := queue.NewMemorySyncQueue(10)
		svc := serviceMocks.NewSyncServiceMock()

		var attempts atomic.Int32
		first := make(chan struct{}, 1)
		svc.On("Deliver", mock.Anything, int64(7)).Run(func(mock.Arguments) {
			attempts.Add(1)
			select {
			case first <- struct{}{}:
			default:
			}
		}).Return(errors.New("db down"))

		require.NoError(t, worker.NewSyncWorker(svc, q).Start(ctx))
		require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 7}))

		select {
		case <-first:
		case <-time.After(time.Second):
			t.Fatal("worker did not attempt delivery in time")
		}

		// 重試交給 reconciler，worker 不應立刻再投遞
		time.Sleep(200 * time.Millisecond)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("Next message is handled after an infrastructure error", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		q := queue.NewMemorySyncQueue(10)
		svc := serviceMocks.NewSyncServiceMock()

		delivered := make(chan int64, 1)
		svc.On("Deliver", mock.Anything, int64(8)).Return(errors.New("connection refused")).Once()
		svc.On("Deliver", mock.Anything, int64(9)).Run(func(args mock.Arguments) {
			delivered <- args.Get(1).(int64)
		}).Return(nil).Once()

		require.NoError(t, worker.NewSyncWorker(svc, q).Start(ctx))
		require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 8}))
		require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 9}))

		select {
		case id := <-delivered:
			assert.Equal(t, int64(9), id)
		case <-time.After(time.Second):
			t.Fatal("worker stopped after an infrastructure error")
		}
		svc.AssertNumberOfCalls(t, "Deliver", 2)
	})
}

func TestReconciler_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := serviceMocks.NewSyncServiceMock()

	ticks := make(chan struct{}, 10)
	svc.On("RepublishDue", mock.Anything).Run(func(mock.Arguments) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}).Return(1, nil)

	done := make(chan struct{})
	go func() {
		worker.NewReconciler(svc, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	// 啟動立即一次，之後每個 tick 一次
	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatal("reconciler did not republish in time")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after cancel")
	}
}
