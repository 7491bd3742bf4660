package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/model"
)

type paymentStore struct {
	q db.Querier
}

const paymentColumns = `id, mpesa_id, bill_ref, phone, amount, paid_at, bank_ref,
	block_id, member_id, meeting_id, state, retry_count, failure_reason,
	checkout_request_id, merchant_request_id, initiated_at, validated_at,
	completed_at, failed_at, last_retry_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.MpesaID, &p.BillRef, &p.Phone, &p.Amount, &p.PaidAt,
		&p.BankRef, &p.BlockID, &p.MemberID, &p.MeetingID, &p.State, &p.RetryCount,
		&p.FailureReason, &p.CheckoutRequestID, &p.MerchantRequestID, &p.InitiatedAt,
		&p.ValidatedAt, &p.CompletedAt, &p.FailedAt, &p.LastRetryAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *paymentStore) Create(ctx context.Context, p *model.Payment) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO payments (id, mpesa_id, bill_ref, phone, amount, paid_at, bank_ref,
			block_id, member_id, meeting_id, state, retry_count, failure_reason,
			checkout_request_id, merchant_request_id, initiated_at, validated_at,
			completed_at, failed_at, last_retry_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`,
		p.ID, p.MpesaID, p.BillRef, p.Phone, p.Amount, p.PaidAt, p.BankRef,
		p.BlockID, p.MemberID, p.MeetingID, p.State, p.RetryCount, p.FailureReason,
		p.CheckoutRequestID, p.MerchantRequestID, p.InitiatedAt, p.ValidatedAt,
		p.CompletedAt, p.FailedAt, p.LastRetryAt)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (s *paymentStore) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return scanPayment(s.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (s *paymentStore) GetByMpesaID(ctx context.Context, mpesaID string) (*model.Payment, error) {
	return scanPayment(s.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE mpesa_id = $1`, mpesaID))
}

func (s *paymentStore) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.Payment, error) {
	return scanPayment(s.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE checkout_request_id = $1`, checkoutRequestID))
}

func (s *paymentStore) Update(ctx context.Context, p *model.Payment) error {
	row := s.q.QueryRow(ctx, `
		UPDATE payments
		SET mpesa_id = $1, phone = $2, amount = $3, paid_at = $4, bank_ref = $5,
			meeting_id = $6, state = $7, retry_count = $8, failure_reason = $9,
			checkout_request_id = $10, merchant_request_id = $11,
			validated_at = $12, completed_at = $13, failed_at = $14,
			last_retry_at = $15, updated_at = now()
		WHERE id = $16
		RETURNING updated_at`,
		p.MpesaID, p.Phone, p.Amount, p.PaidAt, p.BankRef, p.MeetingID, p.State,
		p.RetryCount, p.FailureReason, p.CheckoutRequestID, p.MerchantRequestID,
		p.ValidatedAt, p.CompletedAt, p.FailedAt, p.LastRetryAt, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return mapInsertErr(err)
	}
	return nil
}

func (s *paymentStore) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	var args []any

	if filter.MeetingID != nil {
		args = append(args, *filter.MeetingID)
		query += fmt.Sprintf(" AND meeting_id = $%d", len(args))
	}
	if filter.MpesaID != nil {
		args = append(args, *filter.MpesaID)
		query += fmt.Sprintf(" AND mpesa_id = $%d", len(args))
	}
	if filter.State != nil {
		args = append(args, *filter.State)
		query += fmt.Sprintf(" AND state = $%d", len(args))
	}
	query += " ORDER BY initiated_at DESC"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.MpesaID, &p.BillRef, &p.Phone, &p.Amount, &p.PaidAt,
			&p.BankRef, &p.BlockID, &p.MemberID, &p.MeetingID, &p.State, &p.RetryCount,
			&p.FailureReason, &p.CheckoutRequestID, &p.MerchantRequestID, &p.InitiatedAt,
			&p.ValidatedAt, &p.CompletedAt, &p.FailedAt, &p.LastRetryAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
