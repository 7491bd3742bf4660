package model

import "time"

// Meeting is a scheduled weekly contribution sitting for a block. Token is
// the opaque reconciliation token used as the payment bill reference; it is
// globally unique across all meetings ever scheduled.
type Meeting struct {
	ID          int64     `json:"id,string"`
	Token       string    `json:"token"`
	BlockID     int64     `json:"block_id,string"`
	ZoneID      int64     `json:"zone_id,string"`
	HostID      int64     `json:"host_id,string"`
	OrganizerID int64     `json:"organizer_id,string"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WeekWindow returns the ISO week window [Monday 00:00:00, Sunday 23:59:59]
// containing t, in t's location.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	// time.Weekday has Sunday == 0; shift so Monday == 0.
	offset := (int(t.Weekday()) + 6) % 7
	year, month, day := t.AddDate(0, 0, -offset).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return start, end
}
