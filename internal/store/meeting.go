package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"chamahub.app/core/core/db"
	"chamahub.app/core/internal/model"
)

type meetingStore struct {
	q db.Querier
}

const meetingColumns = `id, token, block_id, zone_id, host_id, organizer_id, date, created_at, updated_at`

func scanMeeting(row pgx.Row) (*model.Meeting, error) {
	var m model.Meeting
	err := row.Scan(&m.ID, &m.Token, &m.BlockID, &m.ZoneID, &m.HostID,
		&m.OrganizerID, &m.Date, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *meetingStore) Create(ctx context.Context, m *model.Meeting) error {
	weekStart, _ := model.WeekWindow(m.Date)
	row := s.q.QueryRow(ctx, `
		INSERT INTO meetings (id, token, block_id, zone_id, host_id, organizer_id, date, week_start)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		m.ID, m.Token, m.BlockID, m.ZoneID, m.HostID, m.OrganizerID, m.Date, weekStart)
	if err := row.Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

func (s *meetingStore) GetByID(ctx context.Context, id int64) (*model.Meeting, error) {
	return scanMeeting(s.q.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
}

func (s *meetingStore) GetByToken(ctx context.Context, token string) (*model.Meeting, error) {
	return scanMeeting(s.q.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE token = $1`, token))
}

func (s *meetingStore) Update(ctx context.Context, m *model.Meeting) error {
	weekStart, _ := model.WeekWindow(m.Date)
	row := s.q.QueryRow(ctx, `
		UPDATE meetings
		SET zone_id = $1, host_id = $2, date = $3, week_start = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`,
		m.ZoneID, m.HostID, m.Date, weekStart, m.ID)
	if err := row.Scan(&m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return mapInsertErr(err)
	}
	return nil
}

func (s *meetingStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *meetingStore) List(ctx context.Context, filter MeetingFilter) ([]model.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE 1=1`
	var args []any

	if filter.OrganizerID != nil {
		args = append(args, *filter.OrganizerID)
		query += fmt.Sprintf(" AND organizer_id = $%d", len(args))
	}
	if filter.BlockID != nil {
		args = append(args, *filter.BlockID)
		query += fmt.Sprintf(" AND block_id = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []model.Meeting
	for rows.Next() {
		var m model.Meeting
		if err := rows.Scan(&m.ID, &m.Token, &m.BlockID, &m.ZoneID, &m.HostID,
			&m.OrganizerID, &m.Date, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *meetingStore) ExistsInWindow(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM meetings
			WHERE block_id = $1 AND date >= $2 AND date <= $3 AND id <> $4
		)`, blockID, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (s *meetingStore) NearestForOrganizer(ctx context.Context, organizerID int64, from, to time.Time) (*model.Meeting, error) {
	return scanMeeting(s.q.QueryRow(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE organizer_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
		LIMIT 1`, organizerID, from, to))
}
