package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/model"
)

type umbrellaStore struct {
	q db.Querier
}

func (s *umbrellaStore) Create(ctx context.Context, u *model.Umbrella) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO umbrellas (id, name, location, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Location, u.CreatedBy)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (s *umbrellaStore) GetByID(ctx context.Context, id int64) (*model.Umbrella, error) {
	var u model.Umbrella
	row := s.q.QueryRow(ctx, `
		SELECT id, name, location, created_by, created_at, updated_at
		FROM umbrellas WHERE id = $1`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Location, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *umbrellaStore) List(ctx context.Context) ([]model.Umbrella, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, location, created_by, created_at, updated_at
		FROM umbrellas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var umbrellas []model.Umbrella
	for rows.Next() {
		var u model.Umbrella
		if err := rows.Scan(&u.ID, &u.Name, &u.Location, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		umbrellas = append(umbrellas, u)
	}
	return umbrellas, rows.Err()
}
