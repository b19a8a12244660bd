package config

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Development mode is
// enabled with APP_ENV=development for human-readable output.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
