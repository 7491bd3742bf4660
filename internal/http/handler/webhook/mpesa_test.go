package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chamahub.app/core/internal/http/handler/webhook"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/service"
	"chamahub.app/core/internal/store"
)

// fakeReconciler stubs the three webhook-facing operations; the REST-facing
// rest of the interface is never reached from these handlers.
type fakeReconciler struct {
	validateFn func(ctx context.Context, ev service.C2BValidation) error
	confirmFn  func(ctx context.Context, ev service.C2BConfirmation) (*model.Payment, error)
	callbackFn func(ctx context.Context, cb service.StkCallback) (*model.Payment, error)
}

func (f *fakeReconciler) ValidateC2B(ctx context.Context, ev service.C2BValidation) error {
	if f.validateFn != nil {
		return f.validateFn(ctx, ev)
	}
	return nil
}

func (f *fakeReconciler) ConfirmC2B(ctx context.Context, ev service.C2BConfirmation) (*model.Payment, error) {
	if f.confirmFn != nil {
		return f.confirmFn(ctx, ev)
	}
	return &model.Payment{ID: 1, State: model.PaymentCompleted}, nil
}

func (f *fakeReconciler) HandleStkCallback(ctx context.Context, cb service.StkCallback) (*model.Payment, error) {
	if f.callbackFn != nil {
		return f.callbackFn(ctx, cb)
	}
	return &model.Payment{ID: 1}, nil
}

func (f *fakeReconciler) InitiateStk(ctx context.Context, input service.InitiateStkInput) (*model.Payment, error) {
	return nil, service.ErrPaymentNotFound
}

func (f *fakeReconciler) MarkDispatched(ctx context.Context, paymentID int64, checkoutRequestID, merchantRequestID string) (*model.Payment, error) {
	return nil, service.ErrPaymentNotFound
}

func (f *fakeReconciler) GetPayment(ctx context.Context, paymentID int64) (*model.Payment, error) {
	return nil, service.ErrPaymentNotFound
}

func (f *fakeReconciler) ListPayments(ctx context.Context, filter store.PaymentFilter) ([]model.Payment, error) {
	return nil, nil
}

func (f *fakeReconciler) UpdatePayment(ctx context.Context, paymentID int64, patch service.PaymentPatch) (*model.Payment, error) {
	return nil, service.ErrPaymentNotFound
}

type c2bResult struct {
	ResultCode string `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
	PaymentID  string `json:"PaymentID"`
}

type stkResult struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

var _ = Describe("MpesaWebhookHandler", func() {
	var (
		router     *gin.Engine
		reconciler *fakeReconciler
	)

	post := func(path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeC2B := func(w *httptest.ResponseRecorder) c2bResult {
		var result c2bResult
		Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
		return result
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()

		reconciler = &fakeReconciler{}
		h := webhook.NewMpesaWebhookHandler(reconciler)
		router.POST("/v1/payments/c2b/validation", h.Validation)
		router.POST("/v1/payments/c2b/confirmation", h.Confirmation)
		router.POST("/v1/payments/stk/callback", h.StkCallback)
	})

	Describe("Validation", func() {
		It("accepts an admissible payment", func() {
			var got service.C2BValidation
			reconciler.validateFn = func(ctx context.Context, ev service.C2BValidation) error {
				got = ev
				return nil
			}

			payload := []byte(`{
				"TransactionType": "Pay Bill",
				"TransAmount": "500.00",
				"BillRefNumber": "MEET-ABC",
				"MSISDN": "254712345678"
			}`)

			w := post("/v1/payments/c2b/validation", payload)
			Expect(w.Code).To(Equal(http.StatusOK))

			result := decodeC2B(w)
			Expect(result.ResultCode).To(Equal("0"))
			Expect(result.ResultDesc).To(Equal("Accepted"))

			Expect(got.TransAmount).To(Equal(int64(500)))
			Expect(got.BillRefNumber).To(Equal("MEET-ABC"))
			Expect(got.MSISDN).To(Equal("254712345678"))
		})

		It("rejects an unknown payer with C2B00011", func() {
			reconciler.validateFn = func(ctx context.Context, ev service.C2BValidation) error {
				return service.ErrMemberNotFound
			}

			result := decodeC2B(post("/v1/payments/c2b/validation", []byte(`{"TransAmount": 500}`)))
			Expect(result.ResultCode).To(Equal("C2B00011"))
		})

		It("rejects an unknown bill reference with C2B00012", func() {
			reconciler.validateFn = func(ctx context.Context, ev service.C2BValidation) error {
				return service.ErrMeetingNotFound
			}

			result := decodeC2B(post("/v1/payments/c2b/validation", []byte(`{"TransAmount": 500}`)))
			Expect(result.ResultCode).To(Equal("C2B00012"))
		})

		It("rejects a non-positive amount with C2B00013", func() {
			reconciler.validateFn = func(ctx context.Context, ev service.C2BValidation) error {
				return service.ErrInvalidAmount
			}

			result := decodeC2B(post("/v1/payments/c2b/validation", []byte(`{"TransAmount": 0}`)))
			Expect(result.ResultCode).To(Equal("C2B00013"))
		})

		It("rejects a payer outside the block with C2B00016", func() {
			reconciler.validateFn = func(ctx context.Context, ev service.C2BValidation) error {
				return service.ErrNotBlockMember
			}

			result := decodeC2B(post("/v1/payments/c2b/validation", []byte(`{"TransAmount": 500}`)))
			Expect(result.ResultCode).To(Equal("C2B00016"))
		})

		It("answers a malformed payload with C2B00016, not an HTTP error", func() {
			called := false
			reconciler.validateFn = func(ctx context.Context, ev service.C2BValidation) error {
				called = true
				return nil
			}

			w := post("/v1/payments/c2b/validation", []byte(`{"TransAmount": "not-a-number"`))
			Expect(w.Code).To(Equal(http.StatusOK))

			result := decodeC2B(w)
			Expect(result.ResultCode).To(Equal("C2B00016"))
			Expect(result.ResultDesc).To(Equal("Malformed Payload"))
			Expect(called).To(BeFalse())
		})
	})

	Describe("Confirmation", func() {
		It("records the transfer and echoes the payment id", func() {
			var got service.C2BConfirmation
			reconciler.confirmFn = func(ctx context.Context, ev service.C2BConfirmation) (*model.Payment, error) {
				got = ev
				return &model.Payment{ID: 321, State: model.PaymentCompleted, Amount: ev.TransAmount}, nil
			}

			payload := []byte(`{
				"TransID": "T1",
				"TransAmount": 500,
				"BillRefNumber": "MEET-ABC",
				"MSISDN": "254712345678",
				"BusinessShortCode": "174379",
				"TransactionType": "Pay",
				"TransTime": "20260817103045"
			}`)

			w := post("/v1/payments/c2b/confirmation", payload)
			Expect(w.Code).To(Equal(http.StatusOK))

			result := decodeC2B(w)
			Expect(result.ResultCode).To(Equal("0"))
			Expect(result.PaymentID).To(Equal("321"))

			Expect(got.TransID).To(Equal("T1"))
			Expect(got.TransAmount).To(Equal(int64(500)))
			Expect(got.BillRefNumber).To(Equal("MEET-ABC"))
			Expect(got.TransTime).NotTo(BeNil())
			Expect(*got.TransTime).To(BeTemporally("==",
				time.Date(2026, 8, 17, 10, 30, 45, 0, time.UTC)))
		})

		It("truncates string-encoded decimal amounts", func() {
			var got service.C2BConfirmation
			reconciler.confirmFn = func(ctx context.Context, ev service.C2BConfirmation) (*model.Payment, error) {
				got = ev
				return &model.Payment{ID: 321}, nil
			}

			post("/v1/payments/c2b/confirmation", []byte(`{"TransID": "T1", "TransAmount": "750.00", "BillRefNumber": "MEET-ABC", "MSISDN": "254712345678"}`))
			Expect(got.TransAmount).To(Equal(int64(750)))
		})

		It("maps an unresolvable bill reference to C2B00012", func() {
			reconciler.confirmFn = func(ctx context.Context, ev service.C2BConfirmation) (*model.Payment, error) {
				return nil, service.ErrMeetingNotFound
			}

			result := decodeC2B(post("/v1/payments/c2b/confirmation", []byte(`{"TransID": "T1", "TransAmount": 500}`)))
			Expect(result.ResultCode).To(Equal("C2B00012"))
		})
	})

	Describe("StkCallback", func() {
		It("decodes the nested envelope and acknowledges", func() {
			var got service.StkCallback
			reconciler.callbackFn = func(ctx context.Context, cb service.StkCallback) (*model.Payment, error) {
				got = cb
				return &model.Payment{ID: 1, State: model.PaymentCompleted}, nil
			}

			payload := []byte(`{
				"Body": {
					"stkCallback": {
						"MerchantRequestID": "29115-34620561-1",
						"CheckoutRequestID": "ws_CO_191220191020363925",
						"ResultCode": 0,
						"ResultDesc": "The service request is processed successfully.",
						"CallbackMetadata": {
							"Item": [
								{"Name": "Amount", "Value": 500},
								{"Name": "MpesaReceiptNumber", "Value": "SBL5XK9TQZ"},
								{"Name": "TransactionDate", "Value": 20260817103045},
								{"Name": "PhoneNumber", "Value": 254712345678}
							]
						}
					}
				}
			}`)

			w := post("/v1/payments/stk/callback", payload)
			Expect(w.Code).To(Equal(http.StatusOK))

			var result stkResult
			Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
			Expect(result.ResultCode).To(Equal(0))

			Expect(got.MerchantRequestID).To(Equal("29115-34620561-1"))
			Expect(got.CheckoutRequestID).To(Equal("ws_CO_191220191020363925"))
			Expect(got.ResultCode).To(Equal(0))
			Expect(got.Metadata).To(HaveLen(4))
			Expect(got.Metadata[1].Name).To(Equal("MpesaReceiptNumber"))
			Expect(got.Metadata[1].Value).To(Equal("SBL5XK9TQZ"))
		})

		It("answers a rejected callback with a non-zero code, still HTTP 200", func() {
			reconciler.callbackFn = func(ctx context.Context, cb service.StkCallback) (*model.Payment, error) {
				return nil, service.ErrPaymentNotFound
			}

			w := post("/v1/payments/stk/callback", []byte(`{"Body": {"stkCallback": {"CheckoutRequestID": "ws_CO_unknown", "ResultCode": 0}}}`))
			Expect(w.Code).To(Equal(http.StatusOK))

			var result stkResult
			Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
			Expect(result.ResultCode).To(Equal(1))
		})

		It("answers a malformed body with a non-zero code", func() {
			called := false
			reconciler.callbackFn = func(ctx context.Context, cb service.StkCallback) (*model.Payment, error) {
				called = true
				return nil, nil
			}

			w := post("/v1/payments/stk/callback", []byte(`{"Body": `))
			Expect(w.Code).To(Equal(http.StatusOK))

			var result stkResult
			Expect(json.Unmarshal(w.Body.Bytes(), &result)).To(Succeed())
			Expect(result.ResultCode).To(Equal(1))
			Expect(result.ResultDesc).To(Equal("Malformed Payload"))
			Expect(called).To(BeFalse())
		})
	})
})
