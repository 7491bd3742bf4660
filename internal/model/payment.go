package model

import "time"

type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentCompleted PaymentState = "completed"
	PaymentFailed    PaymentState = "failed"
)

// MaxStkRetries bounds how many times a failed STK push is re-dispatched.
const MaxStkRetries = 3

// retryableStkCodes are the gateway result codes worth another push attempt:
// subscriber lock, request expiry, push timeout and transient system errors.
// User cancellation (1032) and insufficient funds (1) are deliberate outcomes
// and never retried.
var retryableStkCodes = map[int]struct{}{
	1001: {}, // unable to lock subscriber
	1019: {}, // transaction expired
	1025: {}, // system error sending push
	1037: {}, // timeout, user unreachable
}

// StkCodeRetryable reports whether a failed callback result code qualifies
// for the bounded retry policy.
func StkCodeRetryable(code int) bool {
	_, ok := retryableStkCodes[code]
	return ok
}

// Payment is the audit record of one gateway transfer. Rows are never
// deleted; state transitions are driven exclusively by gateway events keyed
// on MpesaID (C2B confirmation) or CheckoutRequestID (STK callback).
type Payment struct {
	ID                int64        `json:"id,string"`
	MpesaID           *string      `json:"mpesa_id,omitempty"`
	BillRef           string       `json:"bill_ref"`
	Phone             string       `json:"phone"`
	Amount            int64        `json:"amount"`
	PaidAt            *time.Time   `json:"paid_at,omitempty"`
	BankRef           string       `json:"bank_ref"`
	BlockID           int64        `json:"block_id,string"`
	MemberID          int64        `json:"member_id,string"`
	MeetingID         *int64       `json:"meeting_id,string,omitempty"`
	State             PaymentState `json:"state"`
	RetryCount        int          `json:"retry_count"`
	FailureReason     *string      `json:"failure_reason,omitempty"`
	CheckoutRequestID *string      `json:"checkout_request_id,omitempty"`
	MerchantRequestID *string      `json:"merchant_request_id,omitempty"`
	InitiatedAt       time.Time    `json:"initiated_at"`
	ValidatedAt       *time.Time   `json:"validated_at,omitempty"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	FailedAt          *time.Time   `json:"failed_at,omitempty"`
	LastRetryAt       *time.Time   `json:"last_retry_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
