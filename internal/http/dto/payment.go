package dto

import (
	"time"

	"chamahub.app/core/internal/model"
)

type InitiateStkRequest struct {
	MemberID  int64 `json:"member_id,string" binding:"required"`
	MeetingID int64 `json:"meeting_id,string" binding:"required"`
	Amount    int64 `json:"amount" binding:"required,gt=0"`
}

type UpdatePaymentRequest struct {
	BankRef *string `json:"bank_ref" binding:"omitempty,min=1"`
}

type PaymentResponse struct {
	ID                int64      `json:"id,string"`
	MpesaID           *string    `json:"mpesa_id,omitempty"`
	BillRef           string     `json:"bill_ref"`
	Phone             string     `json:"phone"`
	Amount            int64      `json:"amount"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	BankRef           string     `json:"bank_ref"`
	BlockID           int64      `json:"block_id,string"`
	MemberID          int64      `json:"member_id,string"`
	MeetingID         *int64     `json:"meeting_id,string,omitempty"`
	State             string     `json:"state"`
	RetryCount        int        `json:"retry_count"`
	FailureReason     *string    `json:"failure_reason,omitempty"`
	CheckoutRequestID *string    `json:"checkout_request_id,omitempty"`
	MerchantRequestID *string    `json:"merchant_request_id,omitempty"`
	InitiatedAt       time.Time  `json:"initiated_at"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	FailedAt          *time.Time `json:"failed_at,omitempty"`
	LastRetryAt       *time.Time `json:"last_retry_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func ToPaymentResponse(p *model.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:                p.ID,
		MpesaID:           p.MpesaID,
		BillRef:           p.BillRef,
		Phone:             p.Phone,
		Amount:            p.Amount,
		PaidAt:            p.PaidAt,
		BankRef:           p.BankRef,
		BlockID:           p.BlockID,
		MemberID:          p.MemberID,
		MeetingID:         p.MeetingID,
		State:             string(p.State),
		RetryCount:        p.RetryCount,
		FailureReason:     p.FailureReason,
		CheckoutRequestID: p.CheckoutRequestID,
		MerchantRequestID: p.MerchantRequestID,
		InitiatedAt:       p.InitiatedAt,
		ValidatedAt:       p.ValidatedAt,
		CompletedAt:       p.CompletedAt,
		FailedAt:          p.FailedAt,
		LastRetryAt:       p.LastRetryAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func ToPaymentResponses(payments []model.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = *ToPaymentResponse(&payments[i])
	}
	return out
}
