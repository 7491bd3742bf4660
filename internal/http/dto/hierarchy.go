package dto

import (
	"time"

	"chamahub.app/core/internal/model"
)

type CreateUmbrellaRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Location  string `json:"location" binding:"required,min=1,max=255"`
	CreatedBy int64  `json:"created_by,string" binding:"required"`
}

type UmbrellaResponse struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedBy int64     `json:"created_by,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToUmbrellaResponse(u *model.Umbrella) *UmbrellaResponse {
	return &UmbrellaResponse{
		ID:        u.ID,
		Name:      u.Name,
		Location:  u.Location,
		CreatedBy: u.CreatedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type CreateBlockRequest struct {
	UmbrellaID int64  `json:"umbrella_id,string" binding:"required"`
	Name       string `json:"name" binding:"required,min=1,max=255"`
	CreatedBy  int64  `json:"created_by,string" binding:"required"`
}

type BlockResponse struct {
	ID          int64     `json:"id,string"`
	UmbrellaID  int64     `json:"umbrella_id,string"`
	Name        string    `json:"name"`
	CreatedBy   int64     `json:"created_by,string"`
	ChairmanID  *int64    `json:"chairman_id,string,omitempty"`
	SecretaryID *int64    `json:"secretary_id,string,omitempty"`
	TreasurerID *int64    `json:"treasurer_id,string,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToBlockResponse(b *model.Block) *BlockResponse {
	return &BlockResponse{
		ID:          b.ID,
		UmbrellaID:  b.UmbrellaID,
		Name:        b.Name,
		CreatedBy:   b.CreatedBy,
		ChairmanID:  b.ChairmanID,
		SecretaryID: b.SecretaryID,
		TreasurerID: b.TreasurerID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type CreateZoneRequest struct {
	BlockID   int64  `json:"block_id,string" binding:"required"`
	Name      string `json:"name" binding:"required,min=1,max=255"`
	CreatedBy int64  `json:"created_by,string" binding:"required"`
}

type ZoneResponse struct {
	ID        int64     `json:"id,string"`
	BlockID   int64     `json:"block_id,string"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToZoneResponse(z *model.Zone) *ZoneResponse {
	return &ZoneResponse{
		ID:        z.ID,
		BlockID:   z.BlockID,
		Name:      z.Name,
		CreatedBy: z.CreatedBy,
		CreatedAt: z.CreatedAt,
		UpdatedAt: z.UpdatedAt,
	}
}

type RegisterMemberRequest struct {
	FullName      string  `json:"full_name" binding:"required,min=1,max=255"`
	NationalID    string  `json:"national_id" binding:"required,min=1,max=32"`
	Phone         string  `json:"phone" binding:"required,min=9,max=15"`
	BankID        *int64  `json:"bank_id,string,omitempty"`
	AccountNumber *string `json:"account_number,omitempty" binding:"omitempty,max=64"`
}

type MemberResponse struct {
	ID            int64      `json:"id,string"`
	FullName      string     `json:"full_name"`
	NationalID    string     `json:"national_id"`
	Phone         string     `json:"phone"`
	BankID        *int64     `json:"bank_id,string,omitempty"`
	AccountNumber *string    `json:"account_number,omitempty"`
	Approval      string     `json:"approval"`
	ApprovedBy    *int64     `json:"approved_by,string,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ToMemberResponse(m *model.Member) *MemberResponse {
	return &MemberResponse{
		ID:            m.ID,
		FullName:      m.FullName,
		NationalID:    m.NationalID,
		Phone:         m.Phone,
		BankID:        m.BankID,
		AccountNumber: m.AccountNumber,
		Approval:      string(m.Approval),
		ApprovedBy:    m.ApprovedBy,
		ApprovedAt:    m.ApprovedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type ApproveMemberRequest struct {
	ApprovedBy int64 `json:"approved_by,string" binding:"required"`
}

type AssignRoleRequest struct {
	MemberID int64  `json:"member_id,string" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=chairman secretary treasurer"`
}
