// Package domain 定義跨服務的領域事件。
//
// 與非同步的訊息佇列不同，這裡的事件在發佈者的交易內同步處理：
// handler 回傳錯誤時整個交易回滾。
package domain

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// PresenterAssigned 使用者被指派為場次講者
type PresenterAssigned struct {
	EventID    int
	UserID     int
	AssignedAt time.Time
}

// Handler 在發佈者的交易內執行
type Handler[T any] func(ctx context.Context, tx pgx.Tx, event T) error

// Dispatcher 同步的型別化事件分派器
type Dispatcher[T any] struct {
	mu       sync.RWMutex
	handlers []Handler[T]
}

func NewDispatcher[T any]() *Dispatcher[T] {
	return &Dispatcher[T]{}
}

func (d *Dispatcher[T]) Subscribe(h Handler[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Publish 依訂閱順序呼叫 handler，第一個錯誤即中止
func (d *Dispatcher[T]) Publish(ctx context.Context, tx pgx.Tx, event T) error {
	d.mu.RLock()
	handlers := make([]Handler[T], len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

// Bus 集中所有領域事件的分派器
type Bus struct {
	PresenterAssigned *Dispatcher[PresenterAssigned]
}

func NewBus() *Bus {
	return &Bus{
		PresenterAssigned: NewDispatcher[PresenterAssigned](),
	}
}
