package store

import (
	"context"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/model"
)

type membershipStore struct {
	q db.Querier
}

func (s *membershipStore) AddToBlock(ctx context.Context, memberID, blockID int64) error {
	// Re-adding an existing membership is a no-op, not a conflict.
	_, err := s.q.Exec(ctx, `
		INSERT INTO member_blocks (member_id, block_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		memberID, blockID)
	return err
}

func (s *membershipStore) RemoveFromBlock(ctx context.Context, memberID, blockID int64) error {
	_, err := s.q.Exec(ctx,
		`DELETE FROM member_blocks WHERE member_id = $1 AND block_id = $2`,
		memberID, blockID)
	return err
}

func (s *membershipStore) AddToZone(ctx context.Context, memberID, zoneID int64) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO member_zones (member_id, zone_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		memberID, zoneID)
	return err
}

func (s *membershipStore) RemoveFromZone(ctx context.Context, memberID, zoneID int64) error {
	_, err := s.q.Exec(ctx,
		`DELETE FROM member_zones WHERE member_id = $1 AND zone_id = $2`,
		memberID, zoneID)
	return err
}

func (s *membershipStore) IsBlockMember(ctx context.Context, memberID, blockID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM member_blocks WHERE member_id = $1 AND block_id = $2
		)`, memberID, blockID).Scan(&exists)
	return exists, err
}

func (s *membershipStore) IsUmbrellaMember(ctx context.Context, memberID, umbrellaID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM member_blocks mb
			JOIN blocks b ON b.id = mb.block_id
			WHERE mb.member_id = $1 AND b.umbrella_id = $2
		)`, memberID, umbrellaID).Scan(&exists)
	return exists, err
}

type roleStore struct {
	q db.Querier
}

func (s *roleStore) Assign(ctx context.Context, a model.RoleAssignment) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO member_roles (member_id, block_id, role)
		VALUES ($1, $2, $3)`,
		a.MemberID, a.BlockID, a.Role)
	return mapInsertErr(err)
}

func (s *roleStore) Revoke(ctx context.Context, a model.RoleAssignment) error {
	tag, err := s.q.Exec(ctx,
		`DELETE FROM member_roles WHERE member_id = $1 AND block_id = $2 AND role = $3`,
		a.MemberID, a.BlockID, a.Role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *roleStore) ListByMember(ctx context.Context, memberID int64) ([]model.RoleAssignment, error) {
	rows, err := s.q.Query(ctx,
		`SELECT member_id, block_id, role FROM member_roles WHERE member_id = $1`,
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.RoleAssignment
	for rows.Next() {
		var a model.RoleAssignment
		if err := rows.Scan(&a.MemberID, &a.BlockID, &a.Role); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *roleStore) HolderForBlock(ctx context.Context, blockID int64, role model.Role) (*int64, error) {
	rows, err := s.q.Query(ctx,
		`SELECT member_id FROM member_roles WHERE block_id = $1 AND role = $2`,
		blockID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var memberID int64
	if err := rows.Scan(&memberID); err != nil {
		return nil, err
	}
	return &memberID, rows.Err()
}
