package model

import "time"

type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
)

// Member is a chama participant. Phone is stored in canonical 254-prefixed
// form; reconciliation matches inbound MSISDNs against it.
type Member struct {
	ID            int64         `json:"id,string"`
	FullName      string        `json:"full_name"`
	NationalID    string        `json:"national_id"`
	Phone         string        `json:"phone"`
	BankID        *int64        `json:"bank_id,string,omitempty"`
	AccountNumber *string       `json:"account_number,omitempty"`
	Approval      ApprovalState `json:"approval"`
	ApprovedBy    *int64        `json:"approved_by,string,omitempty"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Bank is a lookup row for member payout details.
type Bank struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}
