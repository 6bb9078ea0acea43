package payment_controller

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/minhzk/smarthotel-booking/logger"
)

func init() {
	logger.InitLoggers()
	gin.SetMode(gin.TestMode)
}

// fakeGateway accepts a single known signature and records refund calls.
type fakeGateway struct {
	validSignature string
	refunds        []string
}

func (f *fakeGateway) CreateRefund(paymentID string, amount int64, notes map[string]interface{}) (map[string]interface{}, error) {
	f.refunds = append(f.refunds, paymentID)
	return map[string]interface{}{"id": "rfnd_test"}, nil
}

func (f *fakeGateway) VerifyWebhookSignature(signature, body string) bool {
	return signature == f.validSignature
}

func postWebhook(t *testing.T, r *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsUnauthenticated(t *testing.T) {
	gateway := &fakeGateway{validSignature: "sig-ok"}
	service := NewPaymentService(nil, gateway)

	r := gin.New()
	r.POST("/payments/webhook", service.Webhook)

	body := `{"booking_id":"3f1f8a52-0000-7000-8000-000000000001","event_type":"deposit","status":"success","amount":20000,"gateway_payment_id":"pay_1"}`

	t.Run("MissingSignature", func(t *testing.T) {
		w := postWebhook(t, r, body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("WrongSignature", func(t *testing.T) {
		w := postWebhook(t, r, body, "sig-forged")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestWebhookRejectsBadPayload(t *testing.T) {
	gateway := &fakeGateway{validSignature: "sig-ok"}
	service := NewPaymentService(nil, gateway)

	r := gin.New()
	r.POST("/payments/webhook", service.Webhook)

	t.Run("MalformedJSON", func(t *testing.T) {
		w := postWebhook(t, r, "{not json", "sig-ok")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BadBookingID", func(t *testing.T) {
		body := `{"booking_id":"b-1","event_type":"deposit","status":"success","amount":20000,"gateway_payment_id":"pay_1"}`
		w := postWebhook(t, r, body, "sig-ok")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownEventType", func(t *testing.T) {
		body := `{"booking_id":"3f1f8a52-0000-7000-8000-000000000001","event_type":"chargeback","status":"success","amount":20000,"gateway_payment_id":"pay_1"}`
		w := postWebhook(t, r, body, "sig-ok")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownEventStatus", func(t *testing.T) {
		body := `{"booking_id":"3f1f8a52-0000-7000-8000-000000000001","event_type":"deposit","status":"maybe","amount":20000,"gateway_payment_id":"pay_1"}`
		w := postWebhook(t, r, body, "sig-ok")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
