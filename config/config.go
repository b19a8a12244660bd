package config

import (
	"fmt"
	"os"

	"github.com/fitzone-app/backend/internal/khalti"
	"github.com/fitzone-app/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}, nil
}

type KhaltiConfig struct {
	SecretKey string
	BaseURL   string
	ReturnURL string
	SiteURL   string
}

func LoadKhaltiConfig() (*KhaltiConfig, error) {
	cfg := &KhaltiConfig{
		SecretKey: os.Getenv("KHALTI_SECRET_KEY"),
		ReturnURL: os.Getenv("KHALTI_RETURN_URL"),
		SiteURL:   os.Getenv("BASE_URL"),
	}
	if os.Getenv("APP_ENV") == "production" {
		cfg.BaseURL = khalti.ProductionBase
	} else {
		cfg.BaseURL = khalti.SandboxBase
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "http://localhost:5173"
	}
	if cfg.ReturnURL == "" {
		cfg.ReturnURL = cfg.SiteURL + "/dashboard/payment-confirmation"
	}
	return cfg, nil
}

func InitKhaltiClient(cfg *KhaltiConfig) *khalti.Client {
	return khalti.NewClient(cfg.SecretKey, cfg.BaseURL)
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Trainer{},
		&models.AvailabilitySlot{},
		&models.GymBooking{},
		&models.TrainerBooking{},
	)
	if err != nil {
		return nil, err
	}

	seedRoles(db)

	return db, nil
}

func seedRoles(db *gorm.DB) {
	for _, name := range models.SeedRoleNames() {
		var existingRole models.Role
		result := db.Where("name = ?", name).First(&existingRole)
		if result.Error != nil {
			db.Create(&models.Role{Name: name})
		}
	}
}
