package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DispatchMessage asks the worker to push an STK request for a payment.
// It carries everything the dispatcher needs so the worker can build the
// gateway request without re-reading the member row.
type DispatchMessage struct {
	PaymentID int64
	Phone     string
	Amount    int64
	Reference string
	Attempt   int
	TraceID   *string
}

type Producer interface {
	Enqueue(ctx context.Context, msg DispatchMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg DispatchMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"payment_id": msg.PaymentID,
		"phone":      msg.Phone,
		"amount":     msg.Amount,
		"reference":  msg.Reference,
		"attempt":    attempt,
	}

	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue dispatch: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued stk dispatch", "payment_id", msg.PaymentID, "reference", msg.Reference, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
