package auth

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Password       string    `gorm:"-" json:"password,omitempty"`
	HashedPassword string    `json:"-"`
	Role           string    `gorm:"default:'staff'" json:"role"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Staff) TableName() string { return "geo.staff" }

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	StaffID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
}

func (Session) TableName() string { return "geo.staff_sessions" }
