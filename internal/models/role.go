package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names seeded at startup. Members register as RoleUser; RoleAdmin is
// what the admin middleware and JWT claims check against.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key"`
	Name      string    `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func SeedRoleNames() []string {
	return []string{RoleUser, RoleAdmin}
}
