package worker

import (
	"context"

	"go-gin-pd-registration/internal/queue"
	"go-gin-pd-registration/internal/service"
	"go-gin-pd-registration/pkg/logger"

	"go.uber.org/zap"
)

type SyncWorker interface {
	// 訂閱同步佇列並投遞到外部行事曆
	Start(ctx context.Context) error
}

type SyncWorkerImpl struct {
	service service.SyncService
	queue   queue.SyncQueue
}

func NewSyncWorker(service service.SyncService, queue queue.SyncQueue) SyncWorker {
	return &SyncWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *SyncWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			// 投遞失敗已寫回 outbox 並排好下次重試，這裡只有基礎設施錯誤會回傳。
			// outbox 列仍到期，不重新入列，交給 reconciler 依間隔補送
			err := w.service.Deliver(ctx, msg.Data.OperationID)
			if err != nil {
				log.Warn("deliver sync operation failed, left to reconciler",
					zap.Int64("operation_id", msg.Data.OperationID),
					zap.Error(err),
				)
				msg.Nack(false)
				continue
			}
			msg.Ack()
		}
		log.Info("sync worker stopped")
	}()
	return nil
}
