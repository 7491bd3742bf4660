package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/dto"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/service"
	"chamahub.app/core/internal/store"
)

type PaymentHandler struct {
	reconciler service.ReconcilerService
}

func NewPaymentHandler(reconciler service.ReconcilerService) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler}
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.reconciler.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// List supports meeting_id, mpesa_id and state filters.
func (h *PaymentHandler) List(c *gin.Context) {
	var filter store.PaymentFilter

	if raw := c.Query("meeting_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting_id"})
			return
		}
		filter.MeetingID = &id
	}
	if raw := c.Query("mpesa_id"); raw != "" {
		filter.MpesaID = &raw
	}
	if raw := c.Query("state"); raw != "" {
		state := model.PaymentState(raw)
		switch state {
		case model.PaymentPending, model.PaymentCompleted, model.PaymentFailed:
			filter.State = &state
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
			return
		}
	}

	payments, err := h.reconciler.ListPayments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": dto.ToPaymentResponses(payments)})
}

// Update records the treasurer's manual edits, currently the bank deposit
// reference.
func (h *PaymentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.reconciler.UpdatePayment(ctx, id, service.PaymentPatch{
		BankRef: req.BankRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// InitiateStk creates a pending payment and queues the push prompt.
func (h *PaymentHandler) InitiateStk(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.InitiateStkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.reconciler.InitiateStk(ctx, service.InitiateStkInput{
		MemberID:  req.MemberID,
		MeetingID: req.MeetingID,
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToPaymentResponse(payment))
}
