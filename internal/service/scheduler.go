package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chamahub.app/core/common/id"
	"chamahub.app/core/common/logger"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/store"
)

// MeetingTokenBytes sizes the random part of a reconciliation token.
const MeetingTokenBytes = 10

// MeetingPatch is an explicit partial update. Nil fields are left unchanged;
// anything set is re-validated before the write.
type MeetingPatch struct {
	ZoneID *int64
	HostID *int64
	Date   *time.Time
}

// SchedulerService creates and maintains weekly contribution meetings.
type SchedulerService interface {
	Schedule(ctx context.Context, blockID, zoneID, hostID, organizerID int64, date time.Time) (*model.Meeting, error)
	Get(ctx context.Context, meetingID int64) (*model.Meeting, error)
	GetByToken(ctx context.Context, token string) (*model.Meeting, error)
	Update(ctx context.Context, meetingID int64, patch MeetingPatch) (*model.Meeting, error)
	Delete(ctx context.Context, meetingID int64) error
	List(ctx context.Context, filter store.MeetingFilter) ([]model.Meeting, error)
	// CurrentForOrganizer returns the organizer's nearest upcoming meeting in
	// the current week, or ErrMeetingNotFound. A meeting whose date has
	// already elapsed is treated as absent.
	CurrentForOrganizer(ctx context.Context, organizerID int64, now time.Time) (*model.Meeting, error)
}

type schedulerService struct {
	stores   StoreProvider
	txRunner TxRunner
	now      func() time.Time
}

func NewSchedulerService(stores StoreProvider, txRunner TxRunner) SchedulerService {
	return &schedulerService{stores: stores, txRunner: txRunner, now: time.Now}
}

func (s *schedulerService) Schedule(ctx context.Context, blockID, zoneID, hostID, organizerID int64, date time.Time) (*model.Meeting, error) {
	if !date.After(s.now()) {
		return nil, ErrDateInPast
	}

	zone, err := s.stores.Zones().GetByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("getting zone: %w", err)
	}
	if zone.BlockID != blockID {
		return nil, ErrZoneBlockMismatch
	}

	token, err := generateMeetingToken()
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	meeting := &model.Meeting{
		ID:          id.New(),
		Token:       token,
		BlockID:     blockID,
		ZoneID:      zoneID,
		HostID:      hostID,
		OrganizerID: organizerID,
		Date:        date,
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		start, end := model.WeekWindow(date)
		exists, err := stores.Meetings().ExistsInWindow(ctx, blockID, start, end, 0)
		if err != nil {
			return fmt.Errorf("checking week window: %w", err)
		}
		if exists {
			return ErrWeekConflict
		}

		if err := stores.Meetings().Create(ctx, meeting); err != nil {
			// A concurrent schedule for the same block/week loses on the
			// (block_id, week_start) unique index rather than the read above.
			if errors.Is(err, store.ErrDuplicate) {
				return ErrWeekConflict
			}
			return fmt.Errorf("creating meeting: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{
		MeetingID: logger.Ptr(meeting.ID),
		BlockID:   logger.Ptr(blockID),
	}), "meeting scheduled", "token", meeting.Token, "date", meeting.Date)

	return meeting, nil
}

func (s *schedulerService) Get(ctx context.Context, meetingID int64) (*model.Meeting, error) {
	m, err := s.stores.Meetings().GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("getting meeting: %w", err)
	}
	return m, nil
}

func (s *schedulerService) GetByToken(ctx context.Context, token string) (*model.Meeting, error) {
	m, err := s.stores.Meetings().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("getting meeting by token: %w", err)
	}
	return m, nil
}

func (s *schedulerService) Update(ctx context.Context, meetingID int64, patch MeetingPatch) (*model.Meeting, error) {
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	// An elapsed meeting is a historical record; payments reconcile against
	// it, so it never mutates.
	if !meeting.Date.After(s.now()) {
		return nil, ErrMeetingElapsed
	}

	if patch.Date != nil {
		if !patch.Date.After(s.now()) {
			return nil, ErrDateInPast
		}
		meeting.Date = *patch.Date
	}
	if patch.HostID != nil {
		meeting.HostID = *patch.HostID
	}
	if patch.ZoneID != nil {
		zone, err := s.stores.Zones().GetByID(ctx, *patch.ZoneID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrZoneNotFound
			}
			return nil, fmt.Errorf("getting zone: %w", err)
		}
		if zone.BlockID != meeting.BlockID {
			return nil, ErrZoneBlockMismatch
		}
		meeting.ZoneID = *patch.ZoneID
	}

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if patch.Date != nil {
			start, end := model.WeekWindow(meeting.Date)
			exists, err := stores.Meetings().ExistsInWindow(ctx, meeting.BlockID, start, end, meeting.ID)
			if err != nil {
				return fmt.Errorf("checking week window: %w", err)
			}
			if exists {
				return ErrWeekConflict
			}
		}

		if err := stores.Meetings().Update(ctx, meeting); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrWeekConflict
			}
			if errors.Is(err, store.ErrNotFound) {
				return ErrMeetingNotFound
			}
			return fmt.Errorf("updating meeting: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return meeting, nil
}

func (s *schedulerService) Delete(ctx context.Context, meetingID int64) error {
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return err
	}
	if !meeting.Date.After(s.now()) {
		return ErrMeetingElapsed
	}

	if err := s.stores.Meetings().Delete(ctx, meetingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMeetingNotFound
		}
		return fmt.Errorf("deleting meeting: %w", err)
	}
	return nil
}

func (s *schedulerService) List(ctx context.Context, filter store.MeetingFilter) ([]model.Meeting, error) {
	return s.stores.Meetings().List(ctx, filter)
}

func (s *schedulerService) CurrentForOrganizer(ctx context.Context, organizerID int64, now time.Time) (*model.Meeting, error) {
	_, end := model.WeekWindow(now)
	m, err := s.stores.Meetings().NearestForOrganizer(ctx, organizerID, now, end)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("finding current meeting: %w", err)
	}
	return m, nil
}

// generateMeetingToken mints the opaque reconciliation token used as the
// payment bill reference. Uppercase base32 keeps it typable on a phone.
func generateMeetingToken() (string, error) {
	bytes := make([]byte, MeetingTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return "MEET-" + enc.EncodeToString(bytes), nil
}
