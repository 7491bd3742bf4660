package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/model"
)

type memberStore struct {
	q db.Querier
}

const memberColumns = `id, full_name, national_id, phone, bank_id, account_number,
	approval, approved_by, approved_at, created_at, updated_at`

func scanMember(row pgx.Row) (*model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.FullName, &m.NationalID, &m.Phone, &m.BankID,
		&m.AccountNumber, &m.Approval, &m.ApprovedBy, &m.ApprovedAt,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *memberStore) Create(ctx context.Context, m *model.Member) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO members (id, full_name, national_id, phone, bank_id, account_number, approval)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		m.ID, m.FullName, m.NationalID, m.Phone, m.BankID, m.AccountNumber, m.Approval)
	if err := row.Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (s *memberStore) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	return scanMember(s.q.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

func (s *memberStore) GetByPhone(ctx context.Context, phone string) (*model.Member, error) {
	return scanMember(s.q.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE phone = $1`, phone))
}

func (s *memberStore) Approve(ctx context.Context, id, approvedBy int64, at time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE members
		SET approval = $1, approved_by = $2, approved_at = $3, updated_at = now()
		WHERE id = $4`,
		model.ApprovalApproved, approvedBy, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type bankStore struct {
	q db.Querier
}

func (s *bankStore) Create(ctx context.Context, b *model.Bank) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO banks (id, name) VALUES ($1, $2)`, b.ID, b.Name)
	return mapInsertErr(err)
}

func (s *bankStore) GetByID(ctx context.Context, id int64) (*model.Bank, error) {
	var b model.Bank
	row := s.q.QueryRow(ctx, `SELECT id, name FROM banks WHERE id = $1`, id)
	if err := row.Scan(&b.ID, &b.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
