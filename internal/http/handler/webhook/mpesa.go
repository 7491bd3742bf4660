// Package webhook receives the M-Pesa gateway's inbound events: C2B
// validation and confirmation, and STK push callbacks. Delivery is
// at-least-once and unordered; all handlers answer with the gateway's
// result-code envelope, never with plain HTTP errors.
package webhook

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chamahub.app/core/common/logger"
	"chamahub.app/core/internal/service"
)

const transTimeLayout = "20060102150405"

// Gateway C2B rejection codes.
const (
	c2bAccepted       = "0"
	c2bInvalidMSISDN  = "C2B00011"
	c2bInvalidAccount = "C2B00012"
	c2bInvalidAmount  = "C2B00013"
	c2bOtherError     = "C2B00016"
)

type MpesaWebhookHandler struct {
	reconciler service.ReconcilerService
}

func NewMpesaWebhookHandler(reconciler service.ReconcilerService) *MpesaWebhookHandler {
	return &MpesaWebhookHandler{reconciler: reconciler}
}

// transAmount tolerates the gateway's inconsistent encoding: confirmation
// payloads carry amounts as strings ("500.00"), sandbox tools send numbers.
type transAmount int64

func (a *transAmount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	*a = transAmount(value)
	return nil
}

type c2bPayload struct {
	TransactionType   string      `json:"TransactionType"`
	TransID           string      `json:"TransID"`
	TransTime         string      `json:"TransTime"`
	TransAmount       transAmount `json:"TransAmount"`
	BusinessShortCode string      `json:"BusinessShortCode"`
	BillRefNumber     string      `json:"BillRefNumber"`
	InvoiceNumber     string      `json:"InvoiceNumber"`
	OrgAccountBalance string      `json:"OrgAccountBalance"`
	ThirdPartyTransID string      `json:"ThirdPartyTransID"`
	MSISDN            string      `json:"MSISDN"`
	FirstName         string      `json:"FirstName"`
	MiddleName        string      `json:"MiddleName"`
	LastName          string      `json:"LastName"`
}

func c2bRespond(c *gin.Context, code, desc string) {
	c.JSON(http.StatusOK, gin.H{"ResultCode": code, "ResultDesc": desc})
}

// c2bReject translates a reconciliation error into the gateway's code set.
func c2bReject(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		c2bRespond(c, c2bInvalidAmount, "Invalid Amount")
	case errors.Is(err, service.ErrMeetingNotFound):
		c2bRespond(c, c2bInvalidAccount, "Invalid Account Number")
	case errors.Is(err, service.ErrMemberNotFound):
		c2bRespond(c, c2bInvalidMSISDN, "Invalid MSISDN")
	default:
		c2bRespond(c, c2bOtherError, "Other Error")
	}
}

func (h *MpesaWebhookHandler) Validation(c *gin.Context) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		Component: "core.webhook.c2b",
	})

	var payload c2bPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		slog.WarnContext(ctx, "malformed validation payload", "error", err)
		c2bRespond(c, c2bOtherError, "Malformed Payload")
		return
	}

	err := h.reconciler.ValidateC2B(ctx, service.C2BValidation{
		TransAmount:   int64(payload.TransAmount),
		BillRefNumber: payload.BillRefNumber,
		MSISDN:        payload.MSISDN,
	})
	if err != nil {
		slog.InfoContext(ctx, "c2b validation rejected",
			"error", err,
			"bill_ref", payload.BillRefNumber,
			"amount", int64(payload.TransAmount))
		c2bReject(c, err)
		return
	}

	c2bRespond(c, c2bAccepted, "Accepted")
}

func (h *MpesaWebhookHandler) Confirmation(c *gin.Context) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		Component: "core.webhook.c2b",
	})

	var payload c2bPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		slog.WarnContext(ctx, "malformed confirmation payload", "error", err)
		c2bRespond(c, c2bOtherError, "Malformed Payload")
		return
	}

	var transTime *time.Time
	if payload.TransTime != "" {
		if parsed, err := time.Parse(transTimeLayout, payload.TransTime); err == nil {
			transTime = &parsed
		}
	}

	payment, err := h.reconciler.ConfirmC2B(ctx, service.C2BConfirmation{
		TransID:       payload.TransID,
		TransAmount:   int64(payload.TransAmount),
		BillRefNumber: payload.BillRefNumber,
		MSISDN:        payload.MSISDN,
		TransTime:     transTime,
	})
	if err != nil {
		slog.WarnContext(ctx, "c2b confirmation rejected",
			"error", err,
			"trans_id", payload.TransID,
			"bill_ref", payload.BillRefNumber)
		c2bReject(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ResultCode": c2bAccepted,
		"ResultDesc": "Accepted",
		"PaymentID":  strconv.FormatInt(payment.ID, 10),
	})
}

type stkCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

func (h *MpesaWebhookHandler) StkCallback(c *gin.Context) {
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		Component: "core.webhook.stk",
	})

	var envelope stkCallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		slog.WarnContext(ctx, "malformed stk callback", "error", err)
		c.JSON(http.StatusOK, gin.H{"ResultCode": 1, "ResultDesc": "Malformed Payload"})
		return
	}

	cb := envelope.Body.StkCallback
	items := make([]service.StkMetadataItem, len(cb.CallbackMetadata.Item))
	for i, item := range cb.CallbackMetadata.Item {
		items[i] = service.StkMetadataItem{Name: item.Name, Value: item.Value}
	}

	_, err := h.reconciler.HandleStkCallback(ctx, service.StkCallback{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		Metadata:          items,
	})
	if err != nil {
		slog.WarnContext(ctx, "stk callback rejected",
			"error", err,
			"checkout_request_id", cb.CheckoutRequestID)
		c.JSON(http.StatusOK, gin.H{"ResultCode": 1, "ResultDesc": "Rejected"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Success"})
}
