package middleware

import (
	"github.com/fitzone-app/backend/config"
	"github.com/fitzone-app/backend/internal/khalti"
	"github.com/fitzone-app/backend/internal/queue"
	"github.com/fitzone-app/backend/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	}
}

func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	}
}

func GetLogger(c *gin.Context) *zap.Logger {
	logger, exists := c.Get("logger")
	if !exists {
		return zap.NewNop()
	}
	return logger.(*zap.Logger)
}

func KhaltiMiddleware(client *khalti.Client, cfg *config.KhaltiConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("khalti_client", client)
		c.Set("khalti_config", cfg)
		c.Next()
	}
}

func GetKhaltiClient(c *gin.Context) *khalti.Client {
	client, exists := c.Get("khalti_client")
	if !exists {
		return nil
	}
	return client.(*khalti.Client)
}

func GetKhaltiConfig(c *gin.Context) *config.KhaltiConfig {
	cfg, exists := c.Get("khalti_config")
	if !exists {
		return nil
	}
	return cfg.(*config.KhaltiConfig)
}

func OTPStoreMiddleware(otpStore *store.OTPStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("otp_store", otpStore)
		c.Next()
	}
}

func GetOTPStore(c *gin.Context) *store.OTPStore {
	otpStore, exists := c.Get("otp_store")
	if !exists {
		return nil
	}
	return otpStore.(*store.OTPStore)
}

func PublisherMiddleware(publisher *queue.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("publisher", publisher)
		c.Next()
	}
}

func GetPublisher(c *gin.Context) *queue.Publisher {
	publisher, exists := c.Get("publisher")
	if !exists {
		return nil
	}
	return publisher.(*queue.Publisher)
}
