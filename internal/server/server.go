package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fitzone-app/backend/config"
	"github.com/fitzone-app/backend/internal/handlers"
	"github.com/fitzone-app/backend/internal/khalti"
	"github.com/fitzone-app/backend/internal/middleware"
	"github.com/fitzone-app/backend/internal/queue"
	"github.com/fitzone-app/backend/internal/store"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	khaltiCfg, err := config.LoadKhaltiConfig()
	if err != nil {
		return fmt.Errorf("failed to load payment config: %v", err)
	}
	khaltiClient := config.InitKhaltiClient(khaltiCfg)

	otpStore := store.NewOTPStore(config.NewRedisClient())
	publisher := queue.NewPublisher(logger)
	defer publisher.Close()

	go queue.StartNotificationConsumer(logger)

	r := gin.Default()

	setupRoutes(r, db, logger, khaltiClient, khaltiCfg, otpStore, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, logger *zap.Logger, khaltiClient *khalti.Client, khaltiCfg *config.KhaltiConfig, otpStore *store.OTPStore, publisher *queue.Publisher) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.KhaltiMiddleware(khaltiClient, khaltiCfg))
	r.Use(middleware.OTPStoreMiddleware(otpStore))
	r.Use(middleware.PublisherMiddleware(publisher))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/otp/request", handlers.RequestOTP)
		public.POST("/otp/verify", handlers.VerifyOTP)

		trainerPublic := public.Group("/trainers")
		{
			trainerPublic.GET("", handlers.ListTrainers)
			trainerPublic.GET("/:id", handlers.GetTrainer)
			trainerPublic.GET("/:id/availability", handlers.GetTrainerAvailability)
		}

		// Gateway callbacks carry no user token.
		public.POST("/payments/webhook", handlers.PaymentWebhook)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		bookings := protected.Group("/bookings")
		{
			bookings.POST("", handlers.CreateGymBooking)
			bookings.GET("", handlers.ListUserGymBookings)
			bookings.PUT("/:id/status", handlers.UpdateGymBookingStatus)
			bookings.DELETE("/:id", handlers.DeleteGymBooking)
		}

		protected.POST("/trainers/:id/book", handlers.BookTrainer)

		trainerBookings := protected.Group("/trainer-bookings")
		{
			trainerBookings.GET("", handlers.ListUserTrainerBookings)
			trainerBookings.PUT("/:id/status", handlers.UpdateTrainerBookingStatus)
			trainerBookings.DELETE("/:id", handlers.DeleteTrainerBooking)
		}

		payments := protected.Group("/payments")
		{
			payments.POST("/initiate", handlers.InitiatePayment)
			payments.POST("/verify", handlers.VerifyPayment)
			payments.POST("/confirm", handlers.DirectConfirmPayment)
			payments.GET("/status/:bookingType/:bookingId", handlers.GetPaymentStatus)
		}

		protected.GET("/transactions", handlers.ListUserTransactions)

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/bookings", handlers.ListAllGymBookings)
			admin.DELETE("/bookings/cancelled", handlers.PurgeCancelledGymBookings)
			admin.GET("/trainer-bookings", handlers.ListAllTrainerBookings)
			admin.PUT("/trainer-bookings/:id/payment", handlers.UpdateTrainerBookingPayment)
			admin.DELETE("/trainer-bookings/cancelled", handlers.PurgeCancelledTrainerBookings)
			admin.POST("/trainers", handlers.CreateTrainer)
			admin.DELETE("/trainers/:id", handlers.DeleteTrainer)
		}
	}
}
