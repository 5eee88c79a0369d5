package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	_ "time/tzdata"

	"go-gin-pd-registration/config"
	"go-gin-pd-registration/internal/model"
	apperrors "go-gin-pd-registration/pkg/app_errors"
	"go-gin-pd-registration/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

type Gateway interface {
	// 同步建立外部行事曆事件，回傳外部 id 與會議連結
	CreateEvent(ctx context.Context, in CreateEventInput, key uuid.UUID) (*Response, error)
	// 送出一筆 outbox 同步意圖
	Deliver(ctx context.Context, op *model.SyncOperation) (*Response, error)
	// 產生 body 時使用的時區
	Location() *time.Location
}

type WebhookGateway struct {
	client   *http.Client
	cfg      config.CalendarConfig
	location *time.Location
	tracer   trace.Tracer
}

func NewWebhookGateway(cfg config.CalendarConfig, client *http.Client, tracer trace.Tracer) (*WebhookGateway, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load calendar time zone %q: %w", cfg.TimeZone, err)
	}
	if client == nil {
		client = &http.Client{}
	}
	return &WebhookGateway{
		client:   client,
		cfg:      cfg,
		location: loc,
		tracer:   tracer,
	}, nil
}

// Location 外部行事曆使用的時區
func (g *WebhookGateway) Location() *time.Location {
	return g.location
}

func (g *WebhookGateway) CreateEvent(ctx context.Context, in CreateEventInput, key uuid.UUID) (*Response, error) {
	body, err := json.Marshal(NewCreateBody(in, g.location))
	if err != nil {
		return nil, fmt.Errorf("marshal create body: %w", err)
	}

	resp, err := g.call(ctx, Request{
		Method:         model.SyncKindCreate.Method(),
		UserID:         in.CreatorEmail,
		Body:           body,
		IdempotencyKey: key.String(),
	})
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: create returned no event id", apperrors.ErrSyncFailure)
	}
	return resp, nil
}

func (g *WebhookGateway) Deliver(ctx context.Context, op *model.SyncOperation) (*Response, error) {
	method := op.Kind.Method()
	if method == "" {
		return nil, fmt.Errorf("%w: unknown sync kind %q", apperrors.ErrInvalidInput, op.Kind)
	}

	return g.call(ctx, Request{
		Method:         method,
		EventID:        op.ExtCalendar,
		UserID:         op.UserEmail,
		Body:           op.Payload,
		IdempotencyKey: op.IdempotencyKey.String(),
	})
}

// call 送出 webhook 請求。HTTP >= 400、body statusCode >= 400、無法解析的 JSON 都視為 ErrSyncFailure
func (g *WebhookGateway) call(ctx context.Context, req Request) (*Response, error) {
	if g.cfg.WebhookURL == "" {
		return nil, fmt.Errorf("%w: calendar webhook url not configured", apperrors.ErrSyncFailure)
	}

	req.Token = g.cfg.Token
	req.CalendarID = g.cfg.CalendarID

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	ctx, span := g.tracer.Start(ctx, "calendar."+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("calendar.method", req.Method),
			attribute.String("calendar.event_id", req.EventID),
			attribute.String("calendar.idempotency_key", req.IdempotencyKey),
		),
	)
	defer span.End()

	resp, err := g.do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithComponent("calendar").Warn("calendar webhook call failed",
			zap.String("method", req.Method),
			zap.String("event_id", req.EventID),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (g *WebhookGateway) do(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrSyncFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSyncFailure, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperrors.ErrSyncFailure, err)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: webhook returned HTTP %d", apperrors.ErrSyncFailure, httpResp.StatusCode)
	}

	var resp Response
	if len(bytes.TrimSpace(raw)) == 0 {
		return &resp, nil
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", apperrors.ErrSyncFailure, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: webhook reported %d %s", apperrors.ErrSyncFailure, resp.StatusCode, resp.Status)
	}

	return &resp, nil
}
