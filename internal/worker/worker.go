package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chamahub.app/core/common/daraja"
	"chamahub.app/core/common/logger"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/queue"
	"chamahub.app/core/internal/service"
)

// Gateway is the slice of the Daraja client the dispatcher needs.
type Gateway interface {
	InitiateStkPush(ctx context.Context, phone string, amount int64, reference, description string) (*daraja.StkPushResponse, error)
}

// PaymentService is the slice of the reconciler the dispatcher needs.
type PaymentService interface {
	GetPayment(ctx context.Context, paymentID int64) (*model.Payment, error)
	MarkDispatched(ctx context.Context, paymentID int64, checkoutRequestID, merchantRequestID string) (*model.Payment, error)
}

type Config struct {
	MaxAttempts int
}

// Worker drains the dispatch stream, pushing each queued STK request to the
// gateway and recording the correlation ids on the payment.
type Worker struct {
	consumer *queue.RedisConsumer
	gateway  Gateway
	payments PaymentService
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, gateway Gateway, payments PaymentService, cfg Config) *Worker {
	return &Worker{
		consumer:  consumer,
		gateway:   gateway,
		payments:  payments,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "dispatch worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "dispatch worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"payment_id", msg.PaymentID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"payment_id", msg.PaymentID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage pushes one dispatch request. Exported so it can be reused
// by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.dispatch")
	defer span.End()

	ctx = logger.WithLogFields(span.Context(), logger.LogFields{
		PaymentID: logger.Ptr(msg.PaymentID),
		MessageID: logger.Ptr(msg.ID),
	})

	slog.InfoContext(ctx, "processing dispatch",
		"reference", msg.Reference,
		"amount", msg.Amount,
		"attempt", msg.Attempt)

	payment, err := w.payments.GetPayment(ctx, msg.PaymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			// Stale message pointing at a row that never committed. Ack so
			// it doesn't loop.
			slog.WarnContext(ctx, "payment not found, dropping dispatch")
			return w.ack(ctx, msg)
		}
		return fmt.Errorf("loading payment: %w", err)
	}

	if payment.State == model.PaymentCompleted {
		// A confirmation or callback beat us to it. Pushing again would
		// prompt the member to pay twice.
		slog.InfoContext(ctx, "payment already completed, dropping dispatch")
		return w.ack(ctx, msg)
	}

	resp, err := w.gateway.InitiateStkPush(ctx, msg.Phone, msg.Amount, msg.Reference, "chama contribution")
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("initiating stk push: %w", err)
	}

	if _, err := w.payments.MarkDispatched(ctx, msg.PaymentID, resp.CheckoutRequestID, resp.MerchantRequestID); err != nil {
		return fmt.Errorf("recording dispatch: %w", err)
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{
		CheckoutRequestID: logger.Ptr(resp.CheckoutRequestID),
	}), "stk push dispatched")

	return w.ack(ctx, msg)
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) error {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Log but don't fail - message will be reclaimed but the completed
		// state check above keeps a redelivery harmless.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"payment_id", msg.PaymentID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"payment_id", msg.PaymentID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
