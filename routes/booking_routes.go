package routes

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhzk/smarthotel-booking/clients"
	"github.com/minhzk/smarthotel-booking/config"
	"github.com/minhzk/smarthotel-booking/config/db"
	"github.com/minhzk/smarthotel-booking/config/redis"
	"github.com/minhzk/smarthotel-booking/controllers/cancel_booking_controller"
	"github.com/minhzk/smarthotel-booking/controllers/reservation_controller"
	middleware "github.com/minhzk/smarthotel-booking/middlewares"
	"github.com/minhzk/smarthotel-booking/middlewares/auth"
	"github.com/minhzk/smarthotel-booking/sweeper"
)

// RegisterBookingRoutes wires the reservation and cancellation endpoints.
func RegisterBookingRoutes(router *gin.Engine, sw *sweeper.Sweeper) {
	redisClient := redis.GetRedisClient(context.Background())

	gateway := clients.NewRazorpayGateway(
		os.Getenv("RAZORPAY_KEY_ID"),
		os.Getenv("RAZORPAY_KEY_SECRET"),
		os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
	)

	reservationService := reservation_controller.NewReservationService(db.DB, redisClient, sw)
	cancelService := cancel_booking_controller.NewCancelBookingService(db.DB, gateway)

	protected := router.Group("/api/v1/bookings")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("",
			middleware.NewRateLimiter("5-1m", "create-booking"),
			reservationService.Book)

		protected.GET("",
			middleware.NewRateLimiter("20-1m", "list-bookings"),
			reservationService.ListBookings)

		protected.GET("/:booking_id",
			middleware.NewRateLimiter("30-1m", "get-booking"),
			reservationService.GetBooking)

		protected.PATCH("/:booking_id/confirm",
			middleware.NewRateLimiter("10-1m", "confirm-booking"),
			reservationService.ConfirmBooking)

		protected.POST("/:booking_id/cancel",
			middleware.NewRateLimiter("3-1m", "cancel-booking"),
			cancelService.CancelBook)

		protected.POST("/check-completed",
			middleware.NewRateLimiter("2-1m", "check-completed"),
			reservationService.CheckCompletedBookings)
	}
}

// SweeperInterval reads SWEEP_INTERVAL_MINUTES, defaulting to 5 minutes.
func SweeperInterval() time.Duration {
	return time.Duration(config.GetEnvInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute
}
