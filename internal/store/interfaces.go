package store

import (
	"context"
	"errors"
	"time"

	"chamahub.app/core/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert trips a uniqueness constraint.
// The reconciler leans on this for idempotent confirmation replays.
var ErrDuplicate = errors.New("duplicate")

// UmbrellaStore defines the contract for umbrella data access.
type UmbrellaStore interface {
	Create(ctx context.Context, u *model.Umbrella) error
	GetByID(ctx context.Context, id int64) (*model.Umbrella, error)
	List(ctx context.Context) ([]model.Umbrella, error)
}

// BlockStore defines the contract for block data access.
type BlockStore interface {
	Create(ctx context.Context, b *model.Block) error
	GetByID(ctx context.Context, id int64) (*model.Block, error)
	ListByUmbrella(ctx context.Context, umbrellaID int64) ([]model.Block, error)
	// SetCommitteeSeat writes the block's seat column for a role; nil clears it.
	SetCommitteeSeat(ctx context.Context, blockID int64, role model.Role, memberID *int64) error
}

// ZoneStore defines the contract for zone data access.
type ZoneStore interface {
	Create(ctx context.Context, z *model.Zone) error
	GetByID(ctx context.Context, id int64) (*model.Zone, error)
	ListByBlock(ctx context.Context, blockID int64) ([]model.Zone, error)
}

// MemberStore defines the contract for member data access.
type MemberStore interface {
	Create(ctx context.Context, m *model.Member) error
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	GetByPhone(ctx context.Context, phone string) (*model.Member, error)
	Approve(ctx context.Context, id, approvedBy int64, at time.Time) error
}

// BankStore defines the contract for the bank lookup table.
type BankStore interface {
	Create(ctx context.Context, b *model.Bank) error
	GetByID(ctx context.Context, id int64) (*model.Bank, error)
}

// MembershipStore manages member↔block and member↔zone associations.
type MembershipStore interface {
	AddToBlock(ctx context.Context, memberID, blockID int64) error
	RemoveFromBlock(ctx context.Context, memberID, blockID int64) error
	AddToZone(ctx context.Context, memberID, zoneID int64) error
	RemoveFromZone(ctx context.Context, memberID, zoneID int64) error
	IsBlockMember(ctx context.Context, memberID, blockID int64) (bool, error)
	IsUmbrellaMember(ctx context.Context, memberID, umbrellaID int64) (bool, error)
}

// RoleStore manages committee-seat assignments.
type RoleStore interface {
	Assign(ctx context.Context, a model.RoleAssignment) error
	Revoke(ctx context.Context, a model.RoleAssignment) error
	ListByMember(ctx context.Context, memberID int64) ([]model.RoleAssignment, error)
	HolderForBlock(ctx context.Context, blockID int64, role model.Role) (*int64, error)
}

// MeetingFilter narrows List results; nil fields are ignored.
type MeetingFilter struct {
	OrganizerID *int64
	BlockID     *int64
	Start       *time.Time
	End         *time.Time
}

// MeetingStore defines the contract for meeting data access.
type MeetingStore interface {
	Create(ctx context.Context, m *model.Meeting) error
	GetByID(ctx context.Context, id int64) (*model.Meeting, error)
	GetByToken(ctx context.Context, token string) (*model.Meeting, error)
	Update(ctx context.Context, m *model.Meeting) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter MeetingFilter) ([]model.Meeting, error)
	// ExistsInWindow reports whether the block already has a meeting dated
	// within [start, end], excluding excludeID (0 to exclude nothing).
	ExistsInWindow(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error)
	// NearestForOrganizer returns the earliest meeting organized by
	// organizerID with date in [from, to].
	NearestForOrganizer(ctx context.Context, organizerID int64, from, to time.Time) (*model.Meeting, error)
}

// PaymentFilter narrows List results; nil fields are ignored.
type PaymentFilter struct {
	MeetingID *int64
	MpesaID   *string
	State     *model.PaymentState
}

// PaymentStore defines the contract for payment data access.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByMpesaID(ctx context.Context, mpesaID string) (*model.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error)
}
