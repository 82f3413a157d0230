package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casaluna/guesthouse-backend/pkg/enums"
)

// User is a back-office operator. The role gates period closing and entry
// deletion; the name is stamped onto entries the user creates.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"column:name;size:128;not null" json:"name"`
	Email        string         `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;size:20;not null;default:staff" json:"role"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
