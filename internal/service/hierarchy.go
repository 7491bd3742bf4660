package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chamahub.app/core/common"
	"chamahub.app/core/common/id"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/store"
)

// HierarchyService manages the umbrella/block/zone containment tree, member
// registration and committee-seat assignment.
type HierarchyService interface {
	CreateUmbrella(ctx context.Context, name, location string, createdBy int64) (*model.Umbrella, error)
	GetUmbrella(ctx context.Context, id int64) (*model.Umbrella, error)
	ListUmbrellas(ctx context.Context) ([]model.Umbrella, error)

	CreateBlock(ctx context.Context, umbrellaID int64, name string, createdBy int64) (*model.Block, error)
	GetBlock(ctx context.Context, id int64) (*model.Block, error)
	ListBlocks(ctx context.Context, umbrellaID int64) ([]model.Block, error)

	CreateZone(ctx context.Context, blockID int64, name string, createdBy int64) (*model.Zone, error)
	GetZone(ctx context.Context, id int64) (*model.Zone, error)
	ListZones(ctx context.Context, blockID int64) ([]model.Zone, error)

	RegisterMember(ctx context.Context, input RegisterMemberInput) (*model.Member, error)
	GetMember(ctx context.Context, id int64) (*model.Member, error)
	ApproveMember(ctx context.Context, memberID, approvedBy int64) error

	AddMemberToZone(ctx context.Context, memberID, zoneID int64) error
	RemoveMemberFromZone(ctx context.Context, memberID, zoneID int64) error
	AddMemberToBlock(ctx context.Context, memberID, blockID int64) error
	RemoveMemberFromBlock(ctx context.Context, memberID, blockID int64) error

	AssignRole(ctx context.Context, memberID, blockID int64, role model.Role) error
	RevokeRole(ctx context.Context, memberID, blockID int64, role model.Role) error
}

// RegisterMemberInput carries the fields needed to register a member. Phone
// is accepted in any supported MSISDN format and stored canonically.
type RegisterMemberInput struct {
	FullName      string
	NationalID    string
	Phone         string
	BankID        *int64
	AccountNumber *string
}

type hierarchyService struct {
	stores   StoreProvider
	txRunner TxRunner
}

func NewHierarchyService(stores StoreProvider, txRunner TxRunner) HierarchyService {
	return &hierarchyService{stores: stores, txRunner: txRunner}
}

func (s *hierarchyService) CreateUmbrella(ctx context.Context, name, location string, createdBy int64) (*model.Umbrella, error) {
	u := &model.Umbrella{
		ID:        id.New(),
		Name:      name,
		Location:  location,
		CreatedBy: createdBy,
	}
	if err := s.stores.Umbrellas().Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("creating umbrella: %w", err)
	}
	return u, nil
}

func (s *hierarchyService) GetUmbrella(ctx context.Context, umbrellaID int64) (*model.Umbrella, error) {
	u, err := s.stores.Umbrellas().GetByID(ctx, umbrellaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUmbrellaNotFound
		}
		return nil, fmt.Errorf("getting umbrella: %w", err)
	}
	return u, nil
}

func (s *hierarchyService) ListUmbrellas(ctx context.Context) ([]model.Umbrella, error) {
	return s.stores.Umbrellas().List(ctx)
}

func (s *hierarchyService) CreateBlock(ctx context.Context, umbrellaID int64, name string, createdBy int64) (*model.Block, error) {
	if _, err := s.GetUmbrella(ctx, umbrellaID); err != nil {
		return nil, err
	}

	b := &model.Block{
		ID:         id.New(),
		UmbrellaID: umbrellaID,
		Name:       name,
		CreatedBy:  createdBy,
	}
	if err := s.stores.Blocks().Create(ctx, b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("creating block: %w", err)
	}
	return b, nil
}

func (s *hierarchyService) GetBlock(ctx context.Context, blockID int64) (*model.Block, error) {
	b, err := s.stores.Blocks().GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlockNotFound
		}
		return nil, fmt.Errorf("getting block: %w", err)
	}
	return b, nil
}

func (s *hierarchyService) ListBlocks(ctx context.Context, umbrellaID int64) ([]model.Block, error) {
	return s.stores.Blocks().ListByUmbrella(ctx, umbrellaID)
}

func (s *hierarchyService) CreateZone(ctx context.Context, blockID int64, name string, createdBy int64) (*model.Zone, error) {
	if _, err := s.GetBlock(ctx, blockID); err != nil {
		return nil, err
	}

	z := &model.Zone{
		ID:        id.New(),
		BlockID:   blockID,
		Name:      name,
		CreatedBy: createdBy,
	}
	if err := s.stores.Zones().Create(ctx, z); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("creating zone: %w", err)
	}
	return z, nil
}

func (s *hierarchyService) GetZone(ctx context.Context, zoneID int64) (*model.Zone, error) {
	z, err := s.stores.Zones().GetByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("getting zone: %w", err)
	}
	return z, nil
}

func (s *hierarchyService) ListZones(ctx context.Context, blockID int64) ([]model.Zone, error) {
	return s.stores.Zones().ListByBlock(ctx, blockID)
}

func (s *hierarchyService) RegisterMember(ctx context.Context, input RegisterMemberInput) (*model.Member, error) {
	phone, err := common.NormalizeMSISDN(input.Phone)
	if err != nil {
		return nil, fmt.Errorf("normalizing phone: %w", err)
	}

	if input.BankID != nil {
		if _, err := s.stores.Banks().GetByID(ctx, *input.BankID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrBankNotFound
			}
			return nil, fmt.Errorf("getting bank: %w", err)
		}
	}

	m := &model.Member{
		ID:            id.New(),
		FullName:      input.FullName,
		NationalID:    input.NationalID,
		Phone:         phone,
		BankID:        input.BankID,
		AccountNumber: input.AccountNumber,
		Approval:      model.ApprovalPending,
	}
	if err := s.stores.Members().Create(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateMember
		}
		return nil, fmt.Errorf("creating member: %w", err)
	}

	slog.InfoContext(ctx, "member registered", "member_id", m.ID, "phone", m.Phone)
	return m, nil
}

func (s *hierarchyService) GetMember(ctx context.Context, memberID int64) (*model.Member, error) {
	m, err := s.stores.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("getting member: %w", err)
	}
	return m, nil
}

func (s *hierarchyService) ApproveMember(ctx context.Context, memberID, approvedBy int64) error {
	if err := s.stores.Members().Approve(ctx, memberID, approvedBy, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("approving member: %w", err)
	}
	return nil
}

// AddMemberToZone places the member in the zone and, transactionally, in the
// zone's parent block. Zone membership implies block membership.
func (s *hierarchyService) AddMemberToZone(ctx context.Context, memberID, zoneID int64) error {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return err
	}
	zone, err := s.GetZone(ctx, zoneID)
	if err != nil {
		return err
	}

	return s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Memberships().AddToZone(ctx, memberID, zoneID); err != nil {
			return fmt.Errorf("adding zone membership: %w", err)
		}
		if err := stores.Memberships().AddToBlock(ctx, memberID, zone.BlockID); err != nil {
			return fmt.Errorf("adding block membership: %w", err)
		}
		return nil
	})
}

func (s *hierarchyService) RemoveMemberFromZone(ctx context.Context, memberID, zoneID int64) error {
	if _, err := s.GetZone(ctx, zoneID); err != nil {
		return err
	}
	return s.stores.Memberships().RemoveFromZone(ctx, memberID, zoneID)
}

func (s *hierarchyService) AddMemberToBlock(ctx context.Context, memberID, blockID int64) error {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return err
	}
	if _, err := s.GetBlock(ctx, blockID); err != nil {
		return err
	}
	return s.stores.Memberships().AddToBlock(ctx, memberID, blockID)
}

func (s *hierarchyService) RemoveMemberFromBlock(ctx context.Context, memberID, blockID int64) error {
	if _, err := s.GetBlock(ctx, blockID); err != nil {
		return err
	}
	return s.stores.Memberships().RemoveFromBlock(ctx, memberID, blockID)
}

// AssignRole seats a member on a block committee. Committee roles are
// pairwise exclusive per member across all blocks, and each block has at
// most one holder per role.
func (s *hierarchyService) AssignRole(ctx context.Context, memberID, blockID int64, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if _, err := s.GetBlock(ctx, blockID); err != nil {
		return err
	}
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return err
	}

	return s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		isMember, err := stores.Memberships().IsBlockMember(ctx, memberID, blockID)
		if err != nil {
			return fmt.Errorf("checking block membership: %w", err)
		}
		if !isMember {
			return ErrNotBlockMember
		}

		held, err := stores.Roles().ListByMember(ctx, memberID)
		if err != nil {
			return fmt.Errorf("listing held roles: %w", err)
		}
		for _, h := range held {
			if role.ExcludedBy(h.Role) {
				return ErrRoleHeld
			}
		}

		err = stores.Roles().Assign(ctx, model.RoleAssignment{
			MemberID: memberID,
			BlockID:  blockID,
			Role:     role,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				if holder, lookupErr := stores.Roles().HolderForBlock(ctx, blockID, role); lookupErr == nil && holder != nil {
					return fmt.Errorf("%w: held by member %d", ErrSeatTaken, *holder)
				}
				return ErrSeatTaken
			}
			return fmt.Errorf("assigning role: %w", err)
		}

		if err := stores.Blocks().SetCommitteeSeat(ctx, blockID, role, &memberID); err != nil {
			return fmt.Errorf("setting committee seat: %w", err)
		}

		slog.InfoContext(ctx, "committee role assigned",
			"member_id", memberID,
			"block_id", blockID,
			"role", role,
		)
		return nil
	})
}

// RevokeRole removes the seat assignment and clears the block's seat column
// in the same transaction.
func (s *hierarchyService) RevokeRole(ctx context.Context, memberID, blockID int64, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	return s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		err := stores.Roles().Revoke(ctx, model.RoleAssignment{
			MemberID: memberID,
			BlockID:  blockID,
			Role:     role,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotAssigned
			}
			return fmt.Errorf("revoking role: %w", err)
		}

		if err := stores.Blocks().SetCommitteeSeat(ctx, blockID, role, nil); err != nil {
			return fmt.Errorf("clearing committee seat: %w", err)
		}

		slog.InfoContext(ctx, "committee role revoked",
			"member_id", memberID,
			"block_id", blockID,
			"role", role,
		)
		return nil
	})
}
