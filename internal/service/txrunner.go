package service

import (
	"context"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Umbrellas() store.UmbrellaStore
	Blocks() store.BlockStore
	Zones() store.ZoneStore
	Members() store.MemberStore
	Banks() store.BankStore
	Memberships() store.MembershipStore
	Roles() store.RoleStore
	Meetings() store.MeetingStore
	Payments() store.PaymentStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.Querier) error {
		stores := store.NewStores(q)
		return fn(stores)
	})
}
