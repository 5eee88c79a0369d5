package worker

import (
	"context"
	"time"

	"go-gin-pd-registration/internal/service"
	"go-gin-pd-registration/pkg/logger"

	"go.uber.org/zap"
)

// Reconciler 定期把到期的 outbox 紀錄重新發佈到佇列。
// 佇列訊息遺失 (程序重啟、記憶體佇列滿) 時靠它補上。
type Reconciler struct {
	service  service.SyncService
	interval time.Duration
}

func NewReconciler(service service.SyncService, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Reconciler{
		service:  service,
		interval: interval,
	}
}

// Run 阻塞直到 ctx 結束；啟動時先掃一次
func (r *Reconciler) Run(ctx context.Context) {
	log := logger.WithComponent("reconciler")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		published, err := r.service.RepublishDue(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error("republish due sync operations failed", zap.Error(err))
		case published > 0:
			log.Info("republished due sync operations", zap.Int("count", published))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
