package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/dto"
	"chamahub.app/core/internal/service"
	"chamahub.app/core/internal/store"
)

const dateLayout = "2006-01-02"

type MeetingHandler struct {
	scheduler service.SchedulerService
}

func NewMeetingHandler(scheduler service.SchedulerService) *MeetingHandler {
	return &MeetingHandler{scheduler: scheduler}
}

func (h *MeetingHandler) Schedule(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.scheduler.Schedule(ctx, req.BlockID, req.ZoneID, req.HostID, req.OrganizerID, req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMeetingResponse(meeting))
}

func (h *MeetingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	meeting, err := h.scheduler.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}

func (h *MeetingHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.scheduler.Update(ctx, id, service.MeetingPatch{
		ZoneID: req.ZoneID,
		HostID: req.HostID,
		Date:   req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}

func (h *MeetingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.scheduler.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List supports organizer_id, block_id, start and end (YYYY-MM-DD) filters.
func (h *MeetingHandler) List(c *gin.Context) {
	var filter store.MeetingFilter

	if raw := c.Query("organizer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organizer_id"})
			return
		}
		filter.OrganizerID = &id
	}
	if raw := c.Query("block_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid block_id"})
			return
		}
		filter.BlockID = &id
	}
	if raw := c.Query("start"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, want YYYY-MM-DD"})
			return
		}
		filter.Start = &start
	}
	if raw := c.Query("end"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, want YYYY-MM-DD"})
			return
		}
		// Inclusive of the whole end day.
		endOfDay := end.AddDate(0, 0, 1).Add(-time.Second)
		filter.End = &endOfDay
	}

	meetings, err := h.scheduler.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetings": dto.ToMeetingResponses(meetings)})
}

// Current returns the organizer's nearest upcoming meeting this week.
func (h *MeetingHandler) Current(c *gin.Context) {
	organizerID, err := strconv.ParseInt(c.Query("organizer_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid organizer_id"})
		return
	}

	meeting, err := h.scheduler.CurrentForOrganizer(c.Request.Context(), organizerID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingResponse(meeting))
}
