package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/calendar"
	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/queue"
	"go-gin-pd-registration/internal/repository"
	apperrors "go-gin-pd-registration/pkg/app_errors"
	"go-gin-pd-registration/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SyncIntent 一筆要寫入 outbox 的外部行事曆異動
type SyncIntent struct {
	Kind        model.SyncKind
	EventID     int
	UserID      int
	ExtCalendar string
	UserEmail   string
	// 區分同一 (kind, event, user) 的不同次操作
	Generation time.Time
	Payload    interface{}
}

type SyncService interface {
	// 在呼叫端交易內寫入 outbox；同一意圖重複寫入不會新增
	Enqueue(ctx context.Context, tx pgx.Tx, intent SyncIntent) (*model.SyncOperation, error)
	// 交易提交後送上佇列；失敗只記錄，reconciler 會補送
	Notify(ctx context.Context, ops ...*model.SyncOperation)
	// worker 呼叫：取得租約、送出、記錄結果
	Deliver(ctx context.Context, opID int64) error
	// reconciler 呼叫：重新發佈到期的意圖
	RepublishDue(ctx context.Context) (int, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.SyncOperation, error)
}

type SyncServiceImpl struct {
	repository repository.SyncOperationRepository
	gateway    calendar.Gateway
	syncQueue  queue.SyncQueue
	cfg        config.OutboxConfig
	lease      time.Duration
	tracer     trace.Tracer
	now        func() time.Time
}

func NewSyncService(
	syncOperationRepository repository.SyncOperationRepository,
	gateway calendar.Gateway,
	syncQueue queue.SyncQueue,
	outboxConfig config.OutboxConfig,
	calendarTimeout time.Duration,
	tracer trace.Tracer,
) SyncService {
	return &SyncServiceImpl{
		repository: syncOperationRepository,
		gateway:    gateway,
		syncQueue:  syncQueue,
		cfg:        outboxConfig,
		// 租約需長於一次 webhook 呼叫
		lease:  2*calendarTimeout + 10*time.Second,
		tracer: tracer,
		now:    time.Now,
	}
}

func (s *SyncServiceImpl) Enqueue(ctx context.Context, tx pgx.Tx, intent SyncIntent) (*model.SyncOperation, error) {
	if !intent.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown sync kind %q", apperrors.ErrInvalidInput, intent.Kind)
	}

	var payload json.RawMessage
	if intent.Payload != nil {
		raw, err := json.Marshal(intent.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal sync payload: %w", err)
		}
		payload = raw
	}

	op, created, err := s.repository.Enqueue(ctx, tx, &model.SyncOperation{
		IdempotencyKey: calendar.IdempotencyKey(intent.Kind, intent.EventID, intent.UserID, intent.Generation),
		Kind:           intent.Kind,
		EventID:        intent.EventID,
		ExtCalendar:    intent.ExtCalendar,
		UserEmail:      intent.UserEmail,
		Payload:        payload,
		Status:         model.SyncStatusPending,
		NextAttemptAt:  s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s intent: %w", intent.Kind, err)
	}
	if !created {
		logger.WithComponent("outbox").Debug("sync intent already enqueued",
			zap.Int64("operation_id", op.ID),
			zap.String("kind", string(op.Kind)),
		)
	}
	return op, nil
}

func (s *SyncServiceImpl) Notify(ctx context.Context, ops ...*model.SyncOperation) {
	// 請求結束不應中斷發佈
	ctx = context.WithoutCancel(ctx)
	log := logger.WithComponent("outbox")

	for _, op := range ops {
		if op == nil || op.IsDone() {
			continue
		}
		if err := s.syncQueue.Publish(ctx, &model.SyncMessage{OperationID: op.ID}); err != nil {
			log.Warn("publish sync intent failed, reconciler will retry",
				zap.Int64("operation_id", op.ID),
				zap.String("kind", string(op.Kind)),
				zap.Error(err),
			)
		}
	}
}

func (s *SyncServiceImpl) Deliver(ctx context.Context, opID int64) error {
	log := logger.WithComponent("outbox").With(zap.Int64("operation_id", opID))

	op, err := s.repository.Claim(ctx, opID, s.now(), s.lease, s.cfg.MaxAttempts)
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncOperationNotFound) {
			// 已完成、尚未到期，或由其他 worker 處理中
			log.Debug("sync intent not claimable")
			return nil
		}
		return fmt.Errorf("claim sync operation %d: %w", opID, err)
	}

	ctx, span := s.tracer.Start(ctx, "outbox.deliver",
		trace.WithAttributes(
			attribute.Int64("outbox.operation_id", op.ID),
			attribute.String("outbox.kind", string(op.Kind)),
			attribute.Int("outbox.attempt", op.Attempts),
		),
	)
	defer span.End()

	_, deliverErr := s.gateway.Deliver(ctx, op)
	if deliverErr == nil {
		if err := s.repository.MarkSucceeded(ctx, op.ID); err != nil {
			span.RecordError(err)
			return fmt.Errorf("mark sync operation %d succeeded: %w", op.ID, err)
		}
		span.SetStatus(codes.Ok, "")
		log.Info("sync intent delivered",
			zap.String("kind", string(op.Kind)),
			zap.Int("attempts", op.Attempts),
		)
		return nil
	}

	span.RecordError(deliverErr)
	span.SetStatus(codes.Error, deliverErr.Error())

	next := s.now().Add(s.RetryDelay(op.Attempts))
	if err := s.repository.MarkFailed(ctx, op.ID, deliverErr.Error(), next); err != nil {
		return fmt.Errorf("mark sync operation %d failed: %w", op.ID, err)
	}

	if op.Attempts >= s.cfg.MaxAttempts {
		log.Error("sync intent exhausted retries",
			zap.String("kind", string(op.Kind)),
			zap.Int("attempts", op.Attempts),
			zap.Error(deliverErr),
		)
	} else {
		log.Warn("sync intent failed, scheduled retry",
			zap.String("kind", string(op.Kind)),
			zap.Int("attempts", op.Attempts),
			zap.Time("next_attempt_at", next),
			zap.Error(deliverErr),
		)
	}
	// 失敗已記錄在 outbox，不回傳給 worker
	return nil
}

// RetryDelay 第 attempts 次失敗後的等待時間 (指數退避，上限 MaxBackoff)
func (s *SyncServiceImpl) RetryDelay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialBackoff
	b.Multiplier = s.cfg.Multiplier
	b.MaxInterval = s.cfg.MaxBackoff
	b.RandomizationFactor = s.cfg.RandomizationFactor
	b.Reset()

	delay := b.InitialInterval
	for i := 0; i < attempts; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

func (s *SyncServiceImpl) RepublishDue(ctx context.Context) (int, error) {
	ops, err := s.repository.ListDue(ctx, s.now(), s.cfg.MaxAttempts, s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list due sync operations: %w", err)
	}

	published := 0
	for _, op := range ops {
		if err := s.syncQueue.Publish(ctx, &model.SyncMessage{OperationID: op.ID}); err != nil {
			if errors.Is(err, queue.ErrQueueFull) {
				break
			}
			return published, fmt.Errorf("republish sync operation %d: %w", op.ID, err)
		}
		published++
	}
	return published, nil
}

func (s *SyncServiceImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.SyncOperation, error) {
	return s.repository.ListByEvent(ctx, eventID)
}
