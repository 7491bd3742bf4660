package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment, so reconciliation context
// (payment_id, mpesa_id, etc.) is included in every log statement downstream.
type LogFields struct {
	PaymentID         *int64  // Payment row ID
	MeetingID         *int64  // Meeting the payment reconciles against
	BlockID           *int64  // Block the payment/meeting belongs to
	MpesaID           *string // Gateway transaction ID (TransID)
	CheckoutRequestID *string // STK push correlation ID
	MessageID         *string // Redis stream message ID
	Component         string  // Component name (e.g. "core.reconciler")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, override LogFields) LogFields {
	result := existing

	if override.PaymentID != nil {
		result.PaymentID = override.PaymentID
	}
	if override.MeetingID != nil {
		result.MeetingID = override.MeetingID
	}
	if override.BlockID != nil {
		result.BlockID = override.BlockID
	}
	if override.MpesaID != nil {
		result.MpesaID = override.MpesaID
	}
	if override.CheckoutRequestID != nil {
		result.CheckoutRequestID = override.CheckoutRequestID
	}
	if override.MessageID != nil {
		result.MessageID = override.MessageID
	}
	if override.Component != "" {
		result.Component = override.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{PaymentID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
