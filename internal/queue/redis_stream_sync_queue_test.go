package queue

import (
	"context"
	"testing"
	"time"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis 測試 Redis (6380) 不可用時略過
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := testutil.SetupRedis(t)
	require.NoError(t, rdb.Del(context.Background(), StreamKey).Err())
	return rdb
}

func TestNewRedisStreamSyncQueue(t *testing.T) {
	rdb := setupRedis(t)

	t.Run("success", func(t *testing.T) {
		q, err := NewRedisStreamSyncQueue(rdb, "test-consumer", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})

	t.Run("existing group and generated consumer id", func(t *testing.T) {
		q, err := NewRedisStreamSyncQueue(rdb, "", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})
}

func TestRedisStreamSyncQueue_deliversPublishedMessage(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	q, err := NewRedisStreamSyncQueue(rdb, "deliver-test", nil)
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 77}))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok, "應收到一筆")
		assert.Equal(t, int64(77), d.Data.OperationID)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到訊息")
	}

	cancel()
	_, ok := <-delCh
	assert.False(t, ok, "Ack 後不應再投遞；下一讀應為 channel 關閉")
}

func TestRedisStreamSyncQueue_NackRequeue_redeliversAfterIdle(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	cfg := &RedisStreamConfig{
		ClaimMinIdleTime:   200 * time.Millisecond,
		ReadGroupBlockTime: 500 * time.Millisecond,
	}
	q, err := NewRedisStreamSyncQueue(rdb, "nack-requeue-test", cfg)
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 9}))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		d.Nack(true)
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	select {
	case d, ok := <-delCh:
		require.True(t, ok, "Nack(requeue) 後應在 ClaimMinIdleTime 後再次投遞")
		assert.Equal(t, int64(9), d.Data.OperationID, "重試應為同一筆")
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到重試投遞")
	}
}

func TestRedisStreamSyncQueue_NackDiscard(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	q, err := NewRedisStreamSyncQueue(rdb, "nack-discard-test", &RedisStreamConfig{
		ClaimMinIdleTime: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, &model.SyncMessage{OperationID: 3}))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	select {
	case d := <-delCh:
		d.Nack(false)
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	select {
	case d, ok := <-delCh:
		if ok && d.Data != nil && d.Data.OperationID == 3 {
			t.Fatal("Nack(false) 後不應再投遞同一筆")
		}
	case <-time.After(time.Second):
	}
}

func TestRedisStreamSyncQueue_ctxCancel_closesChannel(t *testing.T) {
	rdb := setupRedis(t)

	q, err := NewRedisStreamSyncQueue(rdb, "cancel-test", nil)
	require.NoError(t, err)

	subCtx, cancel := context.WithCancel(context.Background())
	delCh, err := q.Subscribe(subCtx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-delCh:
		assert.False(t, ok, "context 取消後 channel 應關閉")
	case <-time.After(3 * time.Second):
		t.Fatal("channel 未在時限內關閉")
	}
}
