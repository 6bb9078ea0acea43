package main

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhzk/smarthotel-booking/badwords"
	"github.com/minhzk/smarthotel-booking/config"
	"github.com/minhzk/smarthotel-booking/config/db"
	"github.com/minhzk/smarthotel-booking/config/redis"
	"github.com/minhzk/smarthotel-booking/logger"
	"github.com/minhzk/smarthotel-booking/middlewares/cors"
	"github.com/minhzk/smarthotel-booking/routes"
	"github.com/minhzk/smarthotel-booking/sweeper"
	"github.com/minhzk/smarthotel-booking/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redis.CloseRedis()

	port := config.GetEnv("PORT", "8080")

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Application: Email templates initialized.")

	if err := badwords.LoadBadWords("badwords/en.txt"); err != nil {
		logger.WarnLogger.Warnf("Review moderation list not loaded: %v", err)
	} else {
		logger.InfoLogger.Info("Bad words loaded successfully!")
	}

	sw := sweeper.New(db.DB, routes.SweeperInterval())
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sw.Run(sweepCtx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterBookingRoutes(r, sw)
	routes.RegisterAvailabilityRoutes(r)
	routes.RegisterPaymentRoutes(r)
	routes.RegisterReviewRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from booking service"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		fmt.Printf("Go Server listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed to listen: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down Go server...")

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		fmt.Printf("Go Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Go Server exited gracefully.")
}
