package service_test

import (
	"context"
	"time"

	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/queue"
	"chamahub.app/core/internal/service"
	"chamahub.app/core/internal/store"
)

type mockUmbrellaStore struct {
	createFn  func(ctx context.Context, u *model.Umbrella) error
	getByIDFn func(ctx context.Context, id int64) (*model.Umbrella, error)
	listFn    func(ctx context.Context) ([]model.Umbrella, error)
}

func (m *mockUmbrellaStore) Create(ctx context.Context, u *model.Umbrella) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUmbrellaStore) GetByID(ctx context.Context, id int64) (*model.Umbrella, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockUmbrellaStore) List(ctx context.Context) ([]model.Umbrella, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockBlockStore struct {
	createFn           func(ctx context.Context, b *model.Block) error
	getByIDFn          func(ctx context.Context, id int64) (*model.Block, error)
	listByUmbrellaFn   func(ctx context.Context, umbrellaID int64) ([]model.Block, error)
	setCommitteeSeatFn func(ctx context.Context, blockID int64, role model.Role, memberID *int64) error
	seatCalls          int
}

func (m *mockBlockStore) Create(ctx context.Context, b *model.Block) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBlockStore) GetByID(ctx context.Context, id int64) (*model.Block, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockBlockStore) ListByUmbrella(ctx context.Context, umbrellaID int64) ([]model.Block, error) {
	if m.listByUmbrellaFn != nil {
		return m.listByUmbrellaFn(ctx, umbrellaID)
	}
	return nil, nil
}

func (m *mockBlockStore) SetCommitteeSeat(ctx context.Context, blockID int64, role model.Role, memberID *int64) error {
	m.seatCalls++
	if m.setCommitteeSeatFn != nil {
		return m.setCommitteeSeatFn(ctx, blockID, role, memberID)
	}
	return nil
}

type mockZoneStore struct {
	createFn      func(ctx context.Context, z *model.Zone) error
	getByIDFn     func(ctx context.Context, id int64) (*model.Zone, error)
	listByBlockFn func(ctx context.Context, blockID int64) ([]model.Zone, error)
}

func (m *mockZoneStore) Create(ctx context.Context, z *model.Zone) error {
	if m.createFn != nil {
		return m.createFn(ctx, z)
	}
	return nil
}

func (m *mockZoneStore) GetByID(ctx context.Context, id int64) (*model.Zone, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockZoneStore) ListByBlock(ctx context.Context, blockID int64) ([]model.Zone, error) {
	if m.listByBlockFn != nil {
		return m.listByBlockFn(ctx, blockID)
	}
	return nil, nil
}

type mockMemberStore struct {
	createFn     func(ctx context.Context, mb *model.Member) error
	getByIDFn    func(ctx context.Context, id int64) (*model.Member, error)
	getByPhoneFn func(ctx context.Context, phone string) (*model.Member, error)
	approveFn    func(ctx context.Context, id, approvedBy int64, at time.Time) error
}

func (m *mockMemberStore) Create(ctx context.Context, mb *model.Member) error {
	if m.createFn != nil {
		return m.createFn(ctx, mb)
	}
	return nil
}

func (m *mockMemberStore) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockMemberStore) GetByPhone(ctx context.Context, phone string) (*model.Member, error) {
	if m.getByPhoneFn != nil {
		return m.getByPhoneFn(ctx, phone)
	}
	return nil, store.ErrNotFound
}

func (m *mockMemberStore) Approve(ctx context.Context, id, approvedBy int64, at time.Time) error {
	if m.approveFn != nil {
		return m.approveFn(ctx, id, approvedBy, at)
	}
	return nil
}

type mockBankStore struct {
	createFn  func(ctx context.Context, b *model.Bank) error
	getByIDFn func(ctx context.Context, id int64) (*model.Bank, error)
}

func (m *mockBankStore) Create(ctx context.Context, b *model.Bank) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBankStore) GetByID(ctx context.Context, id int64) (*model.Bank, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

type mockMembershipStore struct {
	addToBlockFn       func(ctx context.Context, memberID, blockID int64) error
	removeFromBlockFn  func(ctx context.Context, memberID, blockID int64) error
	addToZoneFn        func(ctx context.Context, memberID, zoneID int64) error
	removeFromZoneFn   func(ctx context.Context, memberID, zoneID int64) error
	isBlockMemberFn    func(ctx context.Context, memberID, blockID int64) (bool, error)
	isUmbrellaMemberFn func(ctx context.Context, memberID, umbrellaID int64) (bool, error)
}

func (m *mockMembershipStore) AddToBlock(ctx context.Context, memberID, blockID int64) error {
	if m.addToBlockFn != nil {
		return m.addToBlockFn(ctx, memberID, blockID)
	}
	return nil
}

func (m *mockMembershipStore) RemoveFromBlock(ctx context.Context, memberID, blockID int64) error {
	if m.removeFromBlockFn != nil {
		return m.removeFromBlockFn(ctx, memberID, blockID)
	}
	return nil
}

func (m *mockMembershipStore) AddToZone(ctx context.Context, memberID, zoneID int64) error {
	if m.addToZoneFn != nil {
		return m.addToZoneFn(ctx, memberID, zoneID)
	}
	return nil
}

func (m *mockMembershipStore) RemoveFromZone(ctx context.Context, memberID, zoneID int64) error {
	if m.removeFromZoneFn != nil {
		return m.removeFromZoneFn(ctx, memberID, zoneID)
	}
	return nil
}

func (m *mockMembershipStore) IsBlockMember(ctx context.Context, memberID, blockID int64) (bool, error) {
	if m.isBlockMemberFn != nil {
		return m.isBlockMemberFn(ctx, memberID, blockID)
	}
	return false, nil
}

func (m *mockMembershipStore) IsUmbrellaMember(ctx context.Context, memberID, umbrellaID int64) (bool, error) {
	if m.isUmbrellaMemberFn != nil {
		return m.isUmbrellaMemberFn(ctx, memberID, umbrellaID)
	}
	return false, nil
}

type mockRoleStore struct {
	assignFn         func(ctx context.Context, a model.RoleAssignment) error
	revokeFn         func(ctx context.Context, a model.RoleAssignment) error
	listByMemberFn   func(ctx context.Context, memberID int64) ([]model.RoleAssignment, error)
	holderForBlockFn func(ctx context.Context, blockID int64, role model.Role) (*int64, error)
	assignCalls      int
}

func (m *mockRoleStore) Assign(ctx context.Context, a model.RoleAssignment) error {
	m.assignCalls++
	if m.assignFn != nil {
		return m.assignFn(ctx, a)
	}
	return nil
}

func (m *mockRoleStore) Revoke(ctx context.Context, a model.RoleAssignment) error {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, a)
	}
	return nil
}

func (m *mockRoleStore) ListByMember(ctx context.Context, memberID int64) ([]model.RoleAssignment, error) {
	if m.listByMemberFn != nil {
		return m.listByMemberFn(ctx, memberID)
	}
	return nil, nil
}

func (m *mockRoleStore) HolderForBlock(ctx context.Context, blockID int64, role model.Role) (*int64, error) {
	if m.holderForBlockFn != nil {
		return m.holderForBlockFn(ctx, blockID, role)
	}
	return nil, nil
}

type mockMeetingStore struct {
	createFn             func(ctx context.Context, mtg *model.Meeting) error
	getByIDFn            func(ctx context.Context, id int64) (*model.Meeting, error)
	getByTokenFn         func(ctx context.Context, token string) (*model.Meeting, error)
	updateFn             func(ctx context.Context, mtg *model.Meeting) error
	deleteFn             func(ctx context.Context, id int64) error
	listFn               func(ctx context.Context, filter store.MeetingFilter) ([]model.Meeting, error)
	existsInWindowFn     func(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error)
	nearestForOrganizerFn func(ctx context.Context, organizerID int64, from, to time.Time) (*model.Meeting, error)
	createCalls          int
}

func (m *mockMeetingStore) Create(ctx context.Context, mtg *model.Meeting) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, mtg)
	}
	return nil
}

func (m *mockMeetingStore) GetByID(ctx context.Context, id int64) (*model.Meeting, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockMeetingStore) GetByToken(ctx context.Context, token string) (*model.Meeting, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, store.ErrNotFound
}

func (m *mockMeetingStore) Update(ctx context.Context, mtg *model.Meeting) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, mtg)
	}
	return nil
}

func (m *mockMeetingStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockMeetingStore) List(ctx context.Context, filter store.MeetingFilter) ([]model.Meeting, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockMeetingStore) ExistsInWindow(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
	if m.existsInWindowFn != nil {
		return m.existsInWindowFn(ctx, blockID, start, end, excludeID)
	}
	return false, nil
}

func (m *mockMeetingStore) NearestForOrganizer(ctx context.Context, organizerID int64, from, to time.Time) (*model.Meeting, error) {
	if m.nearestForOrganizerFn != nil {
		return m.nearestForOrganizerFn(ctx, organizerID, from, to)
	}
	return nil, store.ErrNotFound
}

type mockPaymentStore struct {
	createFn                 func(ctx context.Context, p *model.Payment) error
	getByIDFn                func(ctx context.Context, id int64) (*model.Payment, error)
	getByMpesaIDFn           func(ctx context.Context, mpesaID string) (*model.Payment, error)
	getByCheckoutRequestIDFn func(ctx context.Context, checkoutRequestID string) (*model.Payment, error)
	updateFn                 func(ctx context.Context, p *model.Payment) error
	listFn                   func(ctx context.Context, filter store.PaymentFilter) ([]model.Payment, error)
	createCalls              int
	updateCalls              int
}

func (m *mockPaymentStore) Create(ctx context.Context, p *model.Payment) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPaymentStore) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockPaymentStore) GetByMpesaID(ctx context.Context, mpesaID string) (*model.Payment, error) {
	if m.getByMpesaIDFn != nil {
		return m.getByMpesaIDFn(ctx, mpesaID)
	}
	return nil, store.ErrNotFound
}

func (m *mockPaymentStore) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.Payment, error) {
	if m.getByCheckoutRequestIDFn != nil {
		return m.getByCheckoutRequestIDFn(ctx, checkoutRequestID)
	}
	return nil, store.ErrNotFound
}

func (m *mockPaymentStore) Update(ctx context.Context, p *model.Payment) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockPaymentStore) List(ctx context.Context, filter store.PaymentFilter) ([]model.Payment, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

// mockStores satisfies service.StoreProvider; unset stores resolve to empty
// mocks so tests only wire what they exercise.
type mockStores struct {
	umbrellas   *mockUmbrellaStore
	blocks      *mockBlockStore
	zones       *mockZoneStore
	members     *mockMemberStore
	banks       *mockBankStore
	memberships *mockMembershipStore
	roles       *mockRoleStore
	meetings    *mockMeetingStore
	payments    *mockPaymentStore
}

func newMockStores() *mockStores {
	return &mockStores{
		umbrellas:   &mockUmbrellaStore{},
		blocks:      &mockBlockStore{},
		zones:       &mockZoneStore{},
		members:     &mockMemberStore{},
		banks:       &mockBankStore{},
		memberships: &mockMembershipStore{},
		roles:       &mockRoleStore{},
		meetings:    &mockMeetingStore{},
		payments:    &mockPaymentStore{},
	}
}

func (m *mockStores) Umbrellas() store.UmbrellaStore     { return m.umbrellas }
func (m *mockStores) Blocks() store.BlockStore           { return m.blocks }
func (m *mockStores) Zones() store.ZoneStore             { return m.zones }
func (m *mockStores) Members() store.MemberStore         { return m.members }
func (m *mockStores) Banks() store.BankStore             { return m.banks }
func (m *mockStores) Memberships() store.MembershipStore { return m.memberships }
func (m *mockStores) Roles() store.RoleStore             { return m.roles }
func (m *mockStores) Meetings() store.MeetingStore       { return m.meetings }
func (m *mockStores) Payments() store.PaymentStore       { return m.payments }

// mockTxRunner hands the same mock stores to transactional closures.
type mockTxRunner struct {
	stores   *mockStores
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return fn(m.stores)
}

type mockProducer struct {
	enqueueFn    func(ctx context.Context, msg queue.DispatchMessage) error
	enqueueCalls int
	lastMsg      queue.DispatchMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.DispatchMessage) error {
	m.enqueueCalls++
	m.lastMsg = msg
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }
