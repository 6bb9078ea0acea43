package routes

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/minhzk/smarthotel-booking/clients"
	"github.com/minhzk/smarthotel-booking/config/db"
	"github.com/minhzk/smarthotel-booking/controllers/payment_controller"
	middleware "github.com/minhzk/smarthotel-booking/middlewares"
	"github.com/minhzk/smarthotel-booking/middlewares/auth"
)

// RegisterPaymentRoutes wires the gateway webhook and the payment event
// listing. The webhook authenticates by signature, not by JWT.
func RegisterPaymentRoutes(router *gin.Engine) {
	gateway := clients.NewRazorpayGateway(
		os.Getenv("RAZORPAY_KEY_ID"),
		os.Getenv("RAZORPAY_KEY_SECRET"),
		os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	)
	paymentService := payment_controller.NewPaymentService(db.DB, gateway)

	router.POST("/api/v1/payments/webhook", paymentService.Webhook)

	protected := router.Group("/api/v1/payments")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/bookings/:booking_id/events",
			middleware.NewRateLimiter("30-1m", "list-payment-events"),
			paymentService.ListEvents)
	}
}
