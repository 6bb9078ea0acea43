package clients

import (
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// PaymentGatewayWrapper is the engine's surface to the external payment
// system: emitting refund instructions and verifying incoming webhook
// signatures. Card/VNPay processing itself stays outside this service.
// The interface exists so controllers can be tested with a fake gateway.
type PaymentGatewayWrapper interface {
	CreateRefund(paymentID string, amount int64, notes map[string]interface{}) (map[string]interface{}, error)
	VerifyWebhookSignature(signature, body string) bool
}

// RazorpayGateway implements PaymentGatewayWrapper using the Razorpay SDK.
type RazorpayGateway struct {
	Client        *razorpay.Client
	WebhookSecret string
}

// NewRazorpayGateway initializes the underlying Razorpay SDK client.
func NewRazorpayGateway(keyID, keySecret, webhookSecret string) *RazorpayGateway {
	return &RazorpayGateway{
		Client:        razorpay.NewClient(keyID, keySecret),
		WebhookSecret: webhookSecret,
	}
}

// CreateRefund issues a refund instruction for a captured payment. Amount is
// in minor currency units; notes travel to the gateway for reconciliation.
func (r *RazorpayGateway) CreateRefund(paymentID string, amount int64, notes map[string]interface{}) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = notes
	}
	return r.Client.Payment.Refund(paymentID, int(amount), data, nil)
}

// VerifyWebhookSignature checks the authenticity of a gateway webhook.
func (r *RazorpayGateway) VerifyWebhookSignature(signature, body string) bool {
	return utils.VerifyWebhookSignature(body, signature, r.WebhookSecret)
}
