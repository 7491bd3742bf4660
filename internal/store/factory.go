package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"chamahub.app/core/core/db"
)

// Stores provides typed accessors over a Querier, which may be the pool or a
// transaction. Inside WithTx every store returned here shares the tx.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Umbrellas() UmbrellaStore {
	return &umbrellaStore{q: s.q}
}

func (s *Stores) Blocks() BlockStore {
	return &blockStore{q: s.q}
}

func (s *Stores) Zones() ZoneStore {
	return &zoneStore{q: s.q}
}

func (s *Stores) Members() MemberStore {
	return &memberStore{q: s.q}
}

func (s *Stores) Banks() BankStore {
	return &bankStore{q: s.q}
}

func (s *Stores) Memberships() MembershipStore {
	return &membershipStore{q: s.q}
}

func (s *Stores) Roles() RoleStore {
	return &roleStore{q: s.q}
}

func (s *Stores) Meetings() MeetingStore {
	return &meetingStore{q: s.q}
}

func (s *Stores) Payments() PaymentStore {
	return &paymentStore{q: s.q}
}

// mapInsertErr converts a unique-violation into ErrDuplicate so callers don't
// have to know postgres error codes.
func mapInsertErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
