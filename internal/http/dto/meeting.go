package dto

import (
	"time"

	"chamahub.app/core/internal/model"
)

type ScheduleMeetingRequest struct {
	BlockID     int64     `json:"block_id,string" binding:"required"`
	ZoneID      int64     `json:"zone_id,string" binding:"required"`
	HostID      int64     `json:"host_id,string" binding:"required"`
	OrganizerID int64     `json:"organizer_id,string" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
}

type UpdateMeetingRequest struct {
	ZoneID *int64     `json:"zone_id,string,omitempty"`
	HostID *int64     `json:"host_id,string,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

type MeetingResponse struct {
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

func ToMeetingResponse(m *model.Meeting) *MeetingResponse {
	return &MeetingResponse{
		ID:          m.ID,
		Token:       m.Token,
		BlockID:     m.BlockID,
		ZoneID:      m.ZoneID,
		HostID:      m.HostID,
		OrganizerID: m.OrganizerID,
		Date:        m.Date,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToMeetingResponses(meetings []model.Meeting) []MeetingResponse {
	out := make([]MeetingResponse, len(meetings))
	for i := range meetings {
		out[i] = *ToMeetingResponse(&meetings[i])
	}
	return out
}
