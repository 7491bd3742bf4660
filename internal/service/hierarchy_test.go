package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chamahub.app/core/common/id"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/service"
	"chamahub.app/core/internal/store"
)

var _ = Describe("HierarchyService", func() {
	var (
		ctx    context.Context
		stores *mockStores
		svc    service.HierarchyService
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())
		stores = newMockStores()
		svc = service.NewHierarchyService(stores, &mockTxRunner{stores: stores})
	})

	Describe("CreateUmbrella", func() {
		It("returns the created umbrella", func() {
			u, err := svc.CreateUmbrella(ctx, "Mwangaza", "Nakuru", 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeZero())
			Expect(u.Name).To(Equal("Mwangaza"))
			Expect(u.Location).To(Equal("Nakuru"))
		})

		It("maps a duplicate name to ErrDuplicateName", func() {
			stores.umbrellas.createFn = func(ctx context.Context, u *model.Umbrella) error {
				return store.ErrDuplicate
			}

			_, err := svc.CreateUmbrella(ctx, "Mwangaza", "Nakuru", 7)
			Expect(err).To(MatchError(service.ErrDuplicateName))
		})
	})

	Describe("CreateBlock", func() {
		It("rejects an unknown umbrella", func() {
			_, err := svc.CreateBlock(ctx, 404, "Block A", 7)
			Expect(err).To(MatchError(service.ErrUmbrellaNotFound))
		})

		It("creates under an existing umbrella", func() {
			stores.umbrellas.getByIDFn = func(ctx context.Context, umbrellaID int64) (*model.Umbrella, error) {
				return &model.Umbrella{ID: umbrellaID, Name: "Mwangaza"}, nil
			}

			b, err := svc.CreateBlock(ctx, 1, "Block A", 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.UmbrellaID).To(Equal(int64(1)))
		})
	})

	Describe("RegisterMember", func() {
		It("stores the phone in canonical form", func() {
			var created *model.Member
			stores.members.createFn = func(ctx context.Context, m *model.Member) error {
				created = m
				return nil
			}

			m, err := svc.RegisterMember(ctx, service.RegisterMemberInput{
				FullName:   "Wanjiku Kamau",
				NationalID: "12345678",
				Phone:      "0712345678",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Phone).To(Equal("254712345678"))
			Expect(created.Approval).To(Equal(model.ApprovalPending))
		})

		It("rejects an unknown bank", func() {
			bankID := int64(99)
			_, err := svc.RegisterMember(ctx, service.RegisterMemberInput{
				FullName:   "Wanjiku Kamau",
				NationalID: "12345678",
				Phone:      "0712345678",
				BankID:     &bankID,
			})
			Expect(err).To(MatchError(service.ErrBankNotFound))
		})

		It("maps a duplicate national id or phone to ErrDuplicateMember", func() {
			stores.members.createFn = func(ctx context.Context, m *model.Member) error {
				return store.ErrDuplicate
			}

			_, err := svc.RegisterMember(ctx, service.RegisterMemberInput{
				FullName:   "Wanjiku Kamau",
				NationalID: "12345678",
				Phone:      "+254712345678",
			})
			Expect(err).To(MatchError(service.ErrDuplicateMember))
		})
	})

	Describe("AddMemberToZone", func() {
		It("adds block membership alongside the zone membership", func() {
			stores.members.getByIDFn = func(ctx context.Context, memberID int64) (*model.Member, error) {
				return &model.Member{ID: memberID}, nil
			}
			stores.zones.getByIDFn = func(ctx context.Context, zoneID int64) (*model.Zone, error) {
				return &model.Zone{ID: zoneID, BlockID: 10}, nil
			}

			var zoneAdds, blockAdds []int64
			stores.memberships.addToZoneFn = func(ctx context.Context, memberID, zoneID int64) error {
				zoneAdds = append(zoneAdds, zoneID)
				return nil
			}
			stores.memberships.addToBlockFn = func(ctx context.Context, memberID, blockID int64) error {
				blockAdds = append(blockAdds, blockID)
				return nil
			}

			Expect(svc.AddMemberToZone(ctx, 5, 20)).To(Succeed())
			Expect(zoneAdds).To(Equal([]int64{20}))
			Expect(blockAdds).To(Equal([]int64{10}))
		})
	})

	Describe("AssignRole", func() {
		BeforeEach(func() {
			stores.blocks.getByIDFn = func(ctx context.Context, blockID int64) (*model.Block, error) {
				return &model.Block{ID: blockID, UmbrellaID: 1}, nil
			}
			stores.members.getByIDFn = func(ctx context.Context, memberID int64) (*model.Member, error) {
				return &model.Member{ID: memberID}, nil
			}
			stores.memberships.isBlockMemberFn = func(ctx context.Context, memberID, blockID int64) (bool, error) {
				return true, nil
			}
		})

		It("rejects a non-member of the block", func() {
			stores.memberships.isBlockMemberFn = func(ctx context.Context, memberID, blockID int64) (bool, error) {
				return false, nil
			}

			err := svc.AssignRole(ctx, 5, 10, model.RoleChairman)
			Expect(err).To(MatchError(service.ErrNotBlockMember))
			Expect(stores.roles.assignCalls).To(BeZero())
		})

		It("rejects a member already holding another committee seat", func() {
			stores.roles.listByMemberFn = func(ctx context.Context, memberID int64) ([]model.RoleAssignment, error) {
				return []model.RoleAssignment{
					{MemberID: memberID, BlockID: 33, Role: model.RoleSecretary},
				}, nil
			}

			err := svc.AssignRole(ctx, 5, 10, model.RoleChairman)
			Expect(err).To(MatchError(service.ErrRoleHeld))
			Expect(stores.roles.assignCalls).To(BeZero())
		})

		It("maps a taken seat to ErrSeatTaken naming the current holder", func() {
			stores.roles.assignFn = func(ctx context.Context, a model.RoleAssignment) error {
				return store.ErrDuplicate
			}
			stores.roles.holderForBlockFn = func(ctx context.Context, blockID int64, role model.Role) (*int64, error) {
				holder := int64(77)
				return &holder, nil
			}

			err := svc.AssignRole(ctx, 5, 10, model.RoleTreasurer)
			Expect(err).To(MatchError(service.ErrSeatTaken))
			Expect(err.Error()).To(ContainSubstring("held by member 77"))
		})

		It("still reports ErrSeatTaken when the holder lookup fails", func() {
			stores.roles.assignFn = func(ctx context.Context, a model.RoleAssignment) error {
				return store.ErrDuplicate
			}
			stores.roles.holderForBlockFn = func(ctx context.Context, blockID int64, role model.Role) (*int64, error) {
				return nil, store.ErrNotFound
			}

			err := svc.AssignRole(ctx, 5, 10, model.RoleTreasurer)
			Expect(err).To(MatchError(service.ErrSeatTaken))
		})

		It("assigns the seat and writes the block's seat column", func() {
			var seated *int64
			var seatRole model.Role
			stores.blocks.setCommitteeSeatFn = func(ctx context.Context, blockID int64, role model.Role, memberID *int64) error {
				seatRole = role
				seated = memberID
				return nil
			}

			Expect(svc.AssignRole(ctx, 5, 10, model.RoleChairman)).To(Succeed())
			Expect(stores.roles.assignCalls).To(Equal(1))
			Expect(seatRole).To(Equal(model.RoleChairman))
			Expect(seated).NotTo(BeNil())
			Expect(*seated).To(Equal(int64(5)))
		})

		It("allows a seat again after the previous role is revoked", func() {
			held := []model.RoleAssignment{
				{MemberID: 5, BlockID: 10, Role: model.RoleSecretary},
			}
			stores.roles.listByMemberFn = func(ctx context.Context, memberID int64) ([]model.RoleAssignment, error) {
				return held, nil
			}

			err := svc.AssignRole(ctx, 5, 10, model.RoleChairman)
			Expect(err).To(MatchError(service.ErrRoleHeld))

			Expect(svc.RevokeRole(ctx, 5, 10, model.RoleSecretary)).To(Succeed())
			held = nil

			Expect(svc.AssignRole(ctx, 5, 10, model.RoleChairman)).To(Succeed())
		})
	})

	Describe("RevokeRole", func() {
		It("maps a missing assignment to ErrRoleNotAssigned", func() {
			stores.roles.revokeFn = func(ctx context.Context, a model.RoleAssignment) error {
				return store.ErrNotFound
			}

			err := svc.RevokeRole(ctx, 5, 10, model.RoleChairman)
			Expect(err).To(MatchError(service.ErrRoleNotAssigned))
		})

		It("clears the block's seat column", func() {
			var cleared bool
			stores.blocks.setCommitteeSeatFn = func(ctx context.Context, blockID int64, role model.Role, memberID *int64) error {
				cleared = memberID == nil
				return nil
			}

			Expect(svc.RevokeRole(ctx, 5, 10, model.RoleChairman)).To(Succeed())
			Expect(cleared).To(BeTrue())
		})
	})
})
