package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/service"
)

// respondError maps service sentinels onto HTTP statuses. Unknown errors
// become a 500 with a generic message; details stay in the logs.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUmbrellaNotFound),
		errors.Is(err, service.ErrBlockNotFound),
		errors.Is(err, service.ErrZoneNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrBankNotFound),
		errors.Is(err, service.ErrMeetingNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrDuplicateMember),
		errors.Is(err, service.ErrRoleHeld),
		errors.Is(err, service.ErrSeatTaken),
		errors.Is(err, service.ErrWeekConflict),
		errors.Is(err, service.ErrMeetingElapsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrZoneBlockMismatch),
		errors.Is(err, service.ErrDateInPast),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrNotBlockMember),
		errors.Is(err, service.ErrNotUmbrellaMember),
		errors.Is(err, service.ErrRoleNotAssigned):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
