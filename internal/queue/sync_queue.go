package queue

import (
	"context"
	"errors"

	"go-gin-pd-registration/internal/model"
)

// ErrQueueFull 記憶體佇列已滿；訊息仍在 outbox 中，reconciler 會重新發佈
var ErrQueueFull = errors.New("sync queue is full")

type Delivery struct {
	Data *model.SyncMessage
	Ack  func()
	Nack func(requeue bool)
}

type SyncQueue interface {
	// 發送同步意圖 (只帶 outbox id)
	Publish(ctx context.Context, msg *model.SyncMessage) error
	// 訂閱同步佇列
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type MemorySyncQueue struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.SyncMessage
}

func NewMemorySyncQueue(bufferSize int) SyncQueue {
	return &MemorySyncQueue{
		ch: make(chan *model.SyncMessage, bufferSize),
	}
}

func (q *MemorySyncQueue) Publish(ctx context.Context, msg *model.SyncMessage) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemorySyncQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data: msg,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							// 佇列滿時放棄，交給 reconciler
							select {
							case q.ch <- msg:
							default:
							}
						}
					},
				}

				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
