package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"chamahub.app/core/common"
	"chamahub.app/core/common/id"
	"chamahub.app/core/common/logger"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/queue"
	"chamahub.app/core/internal/store"
)

// defaultBankRef is written on gateway-confirmed payments until the
// treasurer records the bank deposit reference.
const defaultBankRef = "N/A"

// transTimeLayout is the gateway's timestamp format (YYYYMMDDHHmmss).
const transTimeLayout = "20060102150405"

// C2BValidation is the gateway's pre-authorization check. No money has
// moved; the engine only admits or rejects.
type C2BValidation struct {
	TransAmount   int64
	BillRefNumber string
	MSISDN        string
}

// C2BConfirmation is the authoritative event: money has moved.
type C2BConfirmation struct {
	TransID       string
	TransAmount   int64
	BillRefNumber string
	MSISDN        string
	TransTime     *time.Time
}

// StkMetadataItem is one name/value pair from the callback metadata list.
type StkMetadataItem struct {
	Name  string
	Value any
}

// StkCallback is the result of a previously initiated push request.
type StkCallback struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Metadata          []StkMetadataItem
}

// PaymentPatch is the treasurer-editable slice of a payment. State and
// gateway correlation fields only move through gateway events.
type PaymentPatch struct {
	BankRef *string
}

// InitiateStkInput asks for a push prompt on the member's phone.
type InitiateStkInput struct {
	MemberID  int64
	MeetingID int64
	Amount    int64
}

// ReconcilerService matches inbound gateway events to members, meetings and
// blocks, and drives the payment lifecycle.
type ReconcilerService interface {
	// ValidateC2B is pure admission control; it never writes.
	ValidateC2B(ctx context.Context, ev C2BValidation) error
	// ConfirmC2B records a completed transfer. Replays of an already-seen
	// TransID return the existing payment without a new row.
	ConfirmC2B(ctx context.Context, ev C2BConfirmation) (*model.Payment, error)
	// HandleStkCallback resolves the payment by checkout request id and
	// applies the success or failure transition. Retryable failures under
	// the retry cap enqueue a fresh dispatch; enqueue errors are logged and
	// swallowed, leaving the payment failed with the counter advanced.
	HandleStkCallback(ctx context.Context, cb StkCallback) (*model.Payment, error)
	// InitiateStk creates a pending payment and enqueues the outbound push.
	InitiateStk(ctx context.Context, input InitiateStkInput) (*model.Payment, error)
	// MarkDispatched records the gateway correlation ids after the worker
	// pushes, resetting the payment to pending.
	MarkDispatched(ctx context.Context, paymentID int64, checkoutRequestID, merchantRequestID string) (*model.Payment, error)

	GetPayment(ctx context.Context, paymentID int64) (*model.Payment, error)
	ListPayments(ctx context.Context, filter store.PaymentFilter) ([]model.Payment, error)
	// UpdatePayment applies the treasurer's manual edits, currently the bank
	// deposit reference recorded after the money is banked.
	UpdatePayment(ctx context.Context, paymentID int64, patch PaymentPatch) (*model.Payment, error)
}

type reconcilerService struct {
	stores     StoreProvider
	dispatcher queue.Producer
	now        func() time.Time
}

func NewReconcilerService(stores StoreProvider, dispatcher queue.Producer) ReconcilerService {
	return &reconcilerService{
		stores:     stores,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// resolve maps (bill reference, MSISDN) to the meeting and member the event
// concerns. Shared by validation and confirmation.
func (s *reconcilerService) resolve(ctx context.Context, billRef, msisdn string) (*model.Meeting, *model.Member, error) {
	meeting, err := s.stores.Meetings().GetByToken(ctx, billRef)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrMeetingNotFound
		}
		return nil, nil, fmt.Errorf("resolving meeting: %w", err)
	}

	phone, err := common.NormalizeMSISDN(msisdn)
	if err != nil {
		return nil, nil, fmt.Errorf("normalizing msisdn: %w", err)
	}

	member, err := s.stores.Members().GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrMemberNotFound
		}
		return nil, nil, fmt.Errorf("resolving member: %w", err)
	}

	return meeting, member, nil
}

func (s *reconcilerService) ValidateC2B(ctx context.Context, ev C2BValidation) error {
	if ev.TransAmount <= 0 {
		return ErrInvalidAmount
	}

	meeting, member, err := s.resolve(ctx, ev.BillRefNumber, ev.MSISDN)
	if err != nil {
		return err
	}

	isMember, err := s.stores.Memberships().IsBlockMember(ctx, member.ID, meeting.BlockID)
	if err != nil {
		return fmt.Errorf("checking block membership: %w", err)
	}
	if !isMember {
		return ErrNotBlockMember
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{
		MeetingID: logger.Ptr(meeting.ID),
		BlockID:   logger.Ptr(meeting.BlockID),
	}), "c2b validation accepted", "bill_ref", ev.BillRefNumber, "amount", ev.TransAmount)

	return nil
}

func (s *reconcilerService) ConfirmC2B(ctx context.Context, ev C2BConfirmation) (*model.Payment, error) {
	if ev.TransAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{MpesaID: logger.Ptr(ev.TransID)})

	// Key on the gateway transaction id first. Confirmation delivery is
	// at-least-once, so a replay must be a no-op.
	existing, err := s.stores.Payments().GetByMpesaID(ctx, ev.TransID)
	if err == nil {
		slog.InfoContext(ctx, "confirmation replay, payment already recorded",
			"payment_id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up transaction: %w", err)
	}

	meeting, member, err := s.resolve(ctx, ev.BillRefNumber, ev.MSISDN)
	if err != nil {
		return nil, err
	}

	block, err := s.stores.Blocks().GetByID(ctx, meeting.BlockID)
	if err != nil {
		return nil, fmt.Errorf("getting block: %w", err)
	}

	// Confirmation is the authoritative write path, so the gate widens from
	// block to umbrella membership.
	isMember, err := s.stores.Memberships().IsUmbrellaMember(ctx, member.ID, block.UmbrellaID)
	if err != nil {
		return nil, fmt.Errorf("checking umbrella membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotUmbrellaMember
	}

	now := s.now()
	paidAt := now
	if ev.TransTime != nil {
		paidAt = *ev.TransTime
	}

	payment := &model.Payment{
		ID:          id.New(),
		MpesaID:     &ev.TransID,
		BillRef:     ev.BillRefNumber,
		Phone:       member.Phone,
		Amount:      ev.TransAmount,
		PaidAt:      &paidAt,
		BankRef:     defaultBankRef,
		BlockID:     meeting.BlockID,
		MemberID:    member.ID,
		MeetingID:   &meeting.ID,
		State:       model.PaymentCompleted,
		InitiatedAt: now,
		ValidatedAt: &now,
		CompletedAt: &now,
	}

	if err := s.stores.Payments().Create(ctx, payment); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a race with a concurrent confirmation for the same
			// TransID. The winner's row is the payment.
			winner, lookupErr := s.stores.Payments().GetByMpesaID(ctx, ev.TransID)
			if lookupErr != nil {
				return nil, fmt.Errorf("fetching racing confirmation: %w", lookupErr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{
		PaymentID: logger.Ptr(payment.ID),
		MeetingID: logger.Ptr(meeting.ID),
		BlockID:   logger.Ptr(meeting.BlockID),
	}), "c2b confirmation recorded", "amount", ev.TransAmount)

	return payment, nil
}

func (s *reconcilerService) HandleStkCallback(ctx context.Context, cb StkCallback) (*model.Payment, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CheckoutRequestID: logger.Ptr(cb.CheckoutRequestID),
	})

	payment, err := s.stores.Payments().GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("resolving payment: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{PaymentID: logger.Ptr(payment.ID)})
	now := s.now()

	if cb.ResultCode == 0 {
		applyStkMetadata(payment, cb.Metadata)
		payment.State = model.PaymentCompleted
		payment.CompletedAt = &now
		payment.FailureReason = nil

		if err := s.stores.Payments().Update(ctx, payment); err != nil {
			return nil, fmt.Errorf("completing payment: %w", err)
		}

		slog.InfoContext(ctx, "stk push completed", "amount", payment.Amount)
		return payment, nil
	}

	payment.State = model.PaymentFailed
	payment.FailedAt = &now
	payment.FailureReason = &cb.ResultDesc

	retry := model.StkCodeRetryable(cb.ResultCode) && payment.RetryCount < model.MaxStkRetries
	if retry {
		payment.RetryCount++
		payment.LastRetryAt = &now
	}

	if err := s.stores.Payments().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failing payment: %w", err)
	}

	slog.WarnContext(ctx, "stk push failed",
		"result_code", cb.ResultCode,
		"result_desc", cb.ResultDesc,
		"retry_count", payment.RetryCount,
		"retrying", retry,
	)

	if retry {
		// Dispatch happens out of band; a failed enqueue leaves the payment
		// failed with the counter already advanced, never re-enqueued here.
		err := s.dispatcher.Enqueue(ctx, queue.DispatchMessage{
			PaymentID: payment.ID,
			Phone:     payment.Phone,
			Amount:    payment.Amount,
			Reference: payment.BillRef,
			Attempt:   payment.RetryCount,
			TraceID:   traceIDFromContext(ctx),
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to enqueue stk retry", "error", err)
		}
	}

	return payment, nil
}

func (s *reconcilerService) InitiateStk(ctx context.Context, input InitiateStkInput) (*model.Payment, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	meeting, err := s.stores.Meetings().GetByID(ctx, input.MeetingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("getting meeting: %w", err)
	}

	member, err := s.stores.Members().GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("getting member: %w", err)
	}

	isMember, err := s.stores.Memberships().IsBlockMember(ctx, member.ID, meeting.BlockID)
	if err != nil {
		return nil, fmt.Errorf("checking block membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotBlockMember
	}

	payment := &model.Payment{
		ID:          id.New(),
		BillRef:     meeting.Token,
		Phone:       member.Phone,
		Amount:      input.Amount,
		BankRef:     defaultBankRef,
		BlockID:     meeting.BlockID,
		MemberID:    member.ID,
		MeetingID:   &meeting.ID,
		State:       model.PaymentPending,
		InitiatedAt: s.now(),
	}

	if err := s.stores.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	err = s.dispatcher.Enqueue(ctx, queue.DispatchMessage{
		PaymentID: payment.ID,
		Phone:     payment.Phone,
		Amount:    payment.Amount,
		Reference: payment.BillRef,
		Attempt:   1,
		TraceID:   traceIDFromContext(ctx),
	})
	if err != nil {
		// The pending row stays for manual reconciliation.
		return nil, fmt.Errorf("enqueueing stk dispatch: %w", err)
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{
		PaymentID: logger.Ptr(payment.ID),
		MeetingID: logger.Ptr(meeting.ID),
	}), "stk push initiated", "amount", input.Amount)

	return payment, nil
}

func (s *reconcilerService) MarkDispatched(ctx context.Context, paymentID int64, checkoutRequestID, merchantRequestID string) (*model.Payment, error) {
	payment, err := s.stores.Payments().GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("getting payment: %w", err)
	}

	payment.CheckoutRequestID = &checkoutRequestID
	payment.MerchantRequestID = &merchantRequestID
	payment.State = model.PaymentPending

	if err := s.stores.Payments().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("recording dispatch: %w", err)
	}

	return payment, nil
}

func (s *reconcilerService) GetPayment(ctx context.Context, paymentID int64) (*model.Payment, error) {
	p, err := s.stores.Payments().GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("getting payment: %w", err)
	}
	return p, nil
}

func (s *reconcilerService) ListPayments(ctx context.Context, filter store.PaymentFilter) ([]model.Payment, error) {
	return s.stores.Payments().List(ctx, filter)
}

func (s *reconcilerService) UpdatePayment(ctx context.Context, paymentID int64, patch PaymentPatch) (*model.Payment, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if patch.BankRef != nil {
		payment.BankRef = *patch.BankRef
	}

	if err := s.stores.Payments().Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("updating payment: %w", err)
	}
	return payment, nil
}

// traceIDFromContext lifts the active trace id so the dispatch worker can
// link its span back to the request that queued the push.
func traceIDFromContext(ctx context.Context) *string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	traceID := sc.TraceID().String()
	return &traceID
}

// applyStkMetadata copies the callback metadata items onto the payment.
// The gateway sends a name/value list rather than fixed fields.
func applyStkMetadata(p *model.Payment, items []StkMetadataItem) {
	for _, item := range items {
		switch item.Name {
		case "MpesaReceiptNumber":
			receipt := metadataString(item.Value)
			p.MpesaID = &receipt
		case "Amount":
			if amount, ok := metadataInt64(item.Value); ok {
				p.Amount = amount
			}
		case "TransactionDate":
			if ts, err := time.Parse(transTimeLayout, metadataString(item.Value)); err == nil {
				p.PaidAt = &ts
			}
		case "PhoneNumber":
			if phone, err := common.NormalizeMSISDN(metadataString(item.Value)); err == nil {
				p.Phone = phone
			}
		}
	}
}

// metadataString renders a metadata value as the gateway meant it. JSON
// decodes numbers as float64, so timestamps and phone numbers need integer
// formatting rather than fmt.Sprint's scientific notation.
func metadataString(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func metadataInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
