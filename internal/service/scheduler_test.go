package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chamahub.app/core/common/id"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/service"
	"chamahub.app/core/internal/store"
)

var _ = Describe("SchedulerService", func() {
	var (
		ctx    context.Context
		stores *mockStores
		svc    service.SchedulerService

		// Monday two weeks out; every date built from it is in the future.
		weekStart time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(id.Init(1)).To(Succeed())
		stores = newMockStores()
		svc = service.NewSchedulerService(stores, &mockTxRunner{stores: stores})

		weekStart, _ = model.WeekWindow(time.Now().AddDate(0, 0, 14))

		stores.zones.getByIDFn = func(ctx context.Context, zoneID int64) (*model.Zone, error) {
			return &model.Zone{ID: zoneID, BlockID: 10}, nil
		}
	})

	Describe("Schedule", func() {
		It("rejects a date in the past", func() {
			_, err := svc.Schedule(ctx, 10, 20, 5, 6, time.Now().Add(-time.Hour))
			Expect(err).To(MatchError(service.ErrDateInPast))
		})

		It("rejects a zone belonging to a different block", func() {
			_, err := svc.Schedule(ctx, 11, 20, 5, 6, weekStart.Add(10*time.Hour))
			Expect(err).To(MatchError(service.ErrZoneBlockMismatch))
		})

		It("rejects an unknown zone", func() {
			stores.zones.getByIDFn = nil

			_, err := svc.Schedule(ctx, 10, 20, 5, 6, weekStart.Add(10*time.Hour))
			Expect(err).To(MatchError(service.ErrZoneNotFound))
		})

		It("creates the meeting with a fresh token", func() {
			m, err := svc.Schedule(ctx, 10, 20, 5, 6, weekStart.Add(10*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Token).To(HavePrefix("MEET-"))
			Expect(len(m.Token)).To(BeNumerically(">", len("MEET-")))
			Expect(m.BlockID).To(Equal(int64(10)))
			Expect(stores.meetings.createCalls).To(Equal(1))
		})

		It("checks the Monday-to-Sunday window of the meeting's week", func() {
			var gotStart, gotEnd time.Time
			stores.meetings.existsInWindowFn = func(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
				gotStart, gotEnd = start, end
				return false, nil
			}

			// Wednesday afternoon.
			_, err := svc.Schedule(ctx, 10, 20, 5, 6, weekStart.AddDate(0, 0, 2).Add(14*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(gotStart.Weekday()).To(Equal(time.Monday))
			Expect(gotStart).To(BeTemporally("==", weekStart))
			Expect(gotEnd).To(BeTemporally("==", weekStart.AddDate(0, 0, 7).Add(-time.Second)))
		})

		It("rejects a second meeting in the same week for the block", func() {
			wednesday := weekStart.AddDate(0, 0, 2).Add(10 * time.Hour)
			friday := weekStart.AddDate(0, 0, 4).Add(10 * time.Hour)

			booked := false
			stores.meetings.existsInWindowFn = func(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
				return booked, nil
			}

			_, err := svc.Schedule(ctx, 10, 20, 5, 6, wednesday)
			Expect(err).NotTo(HaveOccurred())
			booked = true

			_, err = svc.Schedule(ctx, 10, 20, 5, 6, friday)
			Expect(err).To(MatchError(service.ErrWeekConflict))
			Expect(stores.meetings.createCalls).To(Equal(1))
		})

		It("allows the following week", func() {
			stores.meetings.existsInWindowFn = func(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
				return start.Before(weekStart.AddDate(0, 0, 7)), nil
			}

			_, err := svc.Schedule(ctx, 10, 20, 5, 6, weekStart.AddDate(0, 0, 7).Add(10*time.Hour))
			Expect(err).NotTo(HaveOccurred())
		})

		It("maps a unique-index loss to ErrWeekConflict", func() {
			stores.meetings.createFn = func(ctx context.Context, m *model.Meeting) error {
				return store.ErrDuplicate
			}

			_, err := svc.Schedule(ctx, 10, 20, 5, 6, weekStart.Add(10*time.Hour))
			Expect(err).To(MatchError(service.ErrWeekConflict))
		})
	})

	Describe("Update", func() {
		var existing *model.Meeting

		BeforeEach(func() {
			existing = &model.Meeting{
				ID:          42,
				Token:       "MEET-EXISTING",
				BlockID:     10,
				ZoneID:      20,
				HostID:      5,
				OrganizerID: 6,
				Date:        weekStart.Add(10 * time.Hour),
			}
			stores.meetings.getByIDFn = func(ctx context.Context, meetingID int64) (*model.Meeting, error) {
				if meetingID == existing.ID {
					return existing, nil
				}
				return nil, store.ErrNotFound
			}
		})

		It("re-checks the week window excluding the meeting itself", func() {
			var gotExclude int64
			stores.meetings.existsInWindowFn = func(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
				gotExclude = excludeID
				return false, nil
			}

			newDate := weekStart.AddDate(0, 0, 7).Add(9 * time.Hour)
			m, err := svc.Update(ctx, 42, service.MeetingPatch{Date: &newDate})
			Expect(err).NotTo(HaveOccurred())
			Expect(gotExclude).To(Equal(int64(42)))
			Expect(m.Date).To(BeTemporally("==", newDate))
		})

		It("rejects a date move into an occupied week", func() {
			stores.meetings.existsInWindowFn = func(ctx context.Context, blockID int64, start, end time.Time, excludeID int64) (bool, error) {
				return true, nil
			}

			newDate := weekStart.AddDate(0, 0, 7).Add(9 * time.Hour)
			_, err := svc.Update(ctx, 42, service.MeetingPatch{Date: &newDate})
			Expect(err).To(MatchError(service.ErrWeekConflict))
		})

		It("rejects a zone from another block", func() {
			stores.zones.getByIDFn = func(ctx context.Context, zoneID int64) (*model.Zone, error) {
				return &model.Zone{ID: zoneID, BlockID: 99}, nil
			}

			zoneID := int64(21)
			_, err := svc.Update(ctx, 42, service.MeetingPatch{ZoneID: &zoneID})
			Expect(err).To(MatchError(service.ErrZoneBlockMismatch))
		})

		It("refuses any change to an elapsed meeting", func() {
			existing.Date = time.Now().Add(-72 * time.Hour)

			updated := false
			stores.meetings.updateFn = func(ctx context.Context, m *model.Meeting) error {
				updated = true
				return nil
			}

			hostID := int64(99)
			_, err := svc.Update(ctx, 42, service.MeetingPatch{HostID: &hostID})
			Expect(err).To(MatchError(service.ErrMeetingElapsed))
			Expect(updated).To(BeFalse())
		})

		It("refuses to move an elapsed meeting into a free future week", func() {
			existing.Date = time.Now().Add(-72 * time.Hour)

			newDate := weekStart.AddDate(0, 0, 7).Add(9 * time.Hour)
			_, err := svc.Update(ctx, 42, service.MeetingPatch{Date: &newDate})
			Expect(err).To(MatchError(service.ErrMeetingElapsed))
		})

		It("leaves unset fields unchanged", func() {
			hostID := int64(77)
			m, err := svc.Update(ctx, 42, service.MeetingPatch{HostID: &hostID})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.HostID).To(Equal(int64(77)))
			Expect(m.ZoneID).To(Equal(int64(20)))
			Expect(m.Date).To(BeTemporally("==", weekStart.Add(10*time.Hour)))
		})
	})

	Describe("Delete", func() {
		It("removes an upcoming meeting", func() {
			stores.meetings.getByIDFn = func(ctx context.Context, meetingID int64) (*model.Meeting, error) {
				return &model.Meeting{ID: meetingID, BlockID: 10, Date: weekStart.Add(10 * time.Hour)}, nil
			}

			var deleted []int64
			stores.meetings.deleteFn = func(ctx context.Context, meetingID int64) error {
				deleted = append(deleted, meetingID)
				return nil
			}

			Expect(svc.Delete(ctx, 42)).To(Succeed())
			Expect(deleted).To(Equal([]int64{42}))
		})

		It("refuses to delete an elapsed meeting", func() {
			stores.meetings.getByIDFn = func(ctx context.Context, meetingID int64) (*model.Meeting, error) {
				return &model.Meeting{ID: meetingID, BlockID: 10, Date: time.Now().Add(-72 * time.Hour)}, nil
			}

			deleted := false
			stores.meetings.deleteFn = func(ctx context.Context, meetingID int64) error {
				deleted = true
				return nil
			}

			err := svc.Delete(ctx, 42)
			Expect(err).To(MatchError(service.ErrMeetingElapsed))
			Expect(deleted).To(BeFalse())
		})

		It("maps an unknown meeting to ErrMeetingNotFound", func() {
			err := svc.Delete(ctx, 404)
			Expect(err).To(MatchError(service.ErrMeetingNotFound))
		})
	})

	Describe("CurrentForOrganizer", func() {
		It("searches from now to the end of the current week", func() {
			now := time.Now()
			_, wantEnd := model.WeekWindow(now)

			var gotFrom, gotTo time.Time
			stores.meetings.nearestForOrganizerFn = func(ctx context.Context, organizerID int64, from, to time.Time) (*model.Meeting, error) {
				gotFrom, gotTo = from, to
				return &model.Meeting{ID: 42, OrganizerID: organizerID}, nil
			}

			m, err := svc.CurrentForOrganizer(ctx, 6, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.ID).To(Equal(int64(42)))
			Expect(gotFrom).To(BeTemporally("==", now))
			Expect(gotTo).To(BeTemporally("==", wantEnd))
		})

		It("treats an elapsed meeting as absent", func() {
			// The store never matches a meeting dated before `from`, so an
			// empty result is the elapsed case.
			_, err := svc.CurrentForOrganizer(ctx, 6, time.Now())
			Expect(err).To(MatchError(service.ErrMeetingNotFound))
		})
	})
})
