package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "calendar-sync"
	ExchangeKind = "direct"
	QueueName    = "pd-registration.calendar-sync"
	RoutingKey   = "sync"
)

// RabbitMQSyncQueue 發佈與消費使用各自的 channel
type RabbitMQSyncQueue struct {
	conn      *amqp.Connection
	publishCh *amqp.Channel
	consumeCh *amqp.Channel
	mu        sync.Mutex
}

func NewRabbitMQSyncQueue(url string) (*RabbitMQSyncQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	publishCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	consumeCh, err := conn.Channel()
	if err != nil {
		publishCh.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	q := &RabbitMQSyncQueue{conn: conn, publishCh: publishCh, consumeCh: consumeCh}
	if err := q.declare(); err != nil {
		q.Close()
		return nil, err
	}
	return q, nil
}

func (q *RabbitMQSyncQueue) declare() error {
	if err := q.publishCh.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	if _, err := q.consumeCh.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := q.consumeCh.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue bind: %w", err)
	}
	return nil
}

func (q *RabbitMQSyncQueue) Publish(ctx context.Context, msg *model.SyncMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal sync message: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.publishCh.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (q *RabbitMQSyncQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	msgs, err := q.consumeCh.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack = false, we ack manually after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	log := logger.WithComponent("mq")
	log.Info("consuming from queue", zap.String("queue", QueueName))

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}

				var syncMsg model.SyncMessage
				if err := json.Unmarshal(d.Body, &syncMsg); err != nil {
					log.Warn("unmarshal sync message failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				amqpDelivery := d
				delivery := Delivery{
					Data: &syncMsg,
					Ack: func() {
						if err := amqpDelivery.Ack(false); err != nil {
							log.Error("ack failed", zap.Error(err))
						}
					},
					Nack: func(requeue bool) {
						if err := amqpDelivery.Nack(false, requeue); err != nil {
							log.Error("nack failed", zap.Error(err))
						}
					},
				}

				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (q *RabbitMQSyncQueue) Close() {
	if q.consumeCh != nil {
		q.consumeCh.Close()
	}
	if q.publishCh != nil {
		q.publishCh.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
