package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/model"
)

type blockStore struct {
	q db.Querier
}

const blockColumns = `id, umbrella_id, name, created_by, chairman_id, secretary_id, treasurer_id, created_at, updated_at`

func scanBlock(row pgx.Row) (*model.Block, error) {
	var b model.Block
	err := row.Scan(&b.ID, &b.UmbrellaID, &b.Name, &b.CreatedBy,
		&b.ChairmanID, &b.SecretaryID, &b.TreasurerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *blockStore) Create(ctx context.Context, b *model.Block) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO blocks (id, umbrella_id, name, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		b.ID, b.UmbrellaID, b.Name, b.CreatedBy)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (s *blockStore) GetByID(ctx context.Context, id int64) (*model.Block, error) {
	return scanBlock(s.q.QueryRow(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id))
}

func (s *blockStore) ListByUmbrella(ctx context.Context, umbrellaID int64) ([]model.Block, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE umbrella_id = $1 ORDER BY name`, umbrellaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var b model.Block
		if err := rows.Scan(&b.ID, &b.UmbrellaID, &b.Name, &b.CreatedBy,
			&b.ChairmanID, &b.SecretaryID, &b.TreasurerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *blockStore) SetCommitteeSeat(ctx context.Context, blockID int64, role model.Role, memberID *int64) error {
	var column string
	switch role {
	case model.RoleChairman:
		column = "chairman_id"
	case model.RoleSecretary:
		column = "secretary_id"
	case model.RoleTreasurer:
		column = "treasurer_id"
	default:
		return fmt.Errorf("unknown committee role %q", role)
	}

	tag, err := s.q.Exec(ctx,
		`UPDATE blocks SET `+column+` = $1, updated_at = now() WHERE id = $2`,
		memberID, blockID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type zoneStore struct {
	q db.Querier
}

func (s *zoneStore) Create(ctx context.Context, z *model.Zone) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO zones (id, block_id, name, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		z.ID, z.BlockID, z.Name, z.CreatedBy)
	if err := row.Scan(&z.CreatedAt, &z.UpdatedAt); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (s *zoneStore) GetByID(ctx context.Context, id int64) (*model.Zone, error) {
	var z model.Zone
	row := s.q.QueryRow(ctx, `
		SELECT id, block_id, name, created_by, created_at, updated_at
		FROM zones WHERE id = $1`, id)
	if err := row.Scan(&z.ID, &z.BlockID, &z.Name, &z.CreatedBy, &z.CreatedAt, &z.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &z, nil
}

func (s *zoneStore) ListByBlock(ctx context.Context, blockID int64) ([]model.Zone, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, block_id, name, created_by, created_at, updated_at
		FROM zones WHERE block_id = $1 ORDER BY name`, blockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.BlockID, &z.Name, &z.CreatedBy, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
