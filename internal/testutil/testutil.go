// Package testutil 提供連線測試 Postgres / Redis 的共用設定。
// 服務未啟動時測試直接 Skip。
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// SetupDB 連線測試資料庫並執行 migration，測試結束時關閉連線
func SetupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	migrateOnce.Do(func() {
		migrateErr = database.Migrate(&cfg.Database)
	})
	if migrateErr != nil {
		t.Fatalf("failed to migrate test database: %v", migrateErr)
	}

	Truncate(t, pool)
	return pool
}

// SetupRedis 僅初始化 Redis，用於只依賴 Redis 的測試 (queue、cache)
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb, err := database.InitRedis(&config.LoadTestConfig().Redis)
	if err != nil {
		t.Skipf("test redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

// Truncate 清空所有業務資料表；link_types 的種子資料保留
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		TRUNCATE sync_operations, event_links, event_accommodations, accommodation_notes,
			event_presenters, registrations, events, event_types, locations, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func CreateUser(t *testing.T, pool *pgxpool.Pool, name string, tier int) int {
	t.Helper()
	var id int
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email, tier) VALUES ($1, $2, $3) RETURNING id`,
		name, fmt.Sprintf("%s@school.org", name), tier,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

func CreateEventType(t *testing.T, pool *pgxpool.Pool, name string, requiresConference bool) int {
	t.Helper()
	var id int
	err := pool.QueryRow(context.Background(),
		`INSERT INTO event_types (name, requires_conference) VALUES ($1, $2) RETURNING id`,
		name, requiresConference,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test event type: %v", err)
	}
	return id
}

// CreateEvent 建立一個一小時後開始、開放報名的場次
func CreateEvent(t *testing.T, pool *pgxpool.Pool, eventTypeID int, capacity int) int {
	t.Helper()
	starts := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	var id int
	err := pool.QueryRow(context.Background(), `
		INSERT INTO events (title, description, event_type_id, capacity, starts, ends, ext_calendar)
		VALUES ($1, $2, $3, $4, $5, $6, 'ext-' || gen_random_uuid()::text)
		RETURNING id`,
		"Test Session", "Test description", eventTypeID, capacity, starts, starts.Add(time.Hour),
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}
	return id
}
