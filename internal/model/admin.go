package model

import (
	"time"

	"github.com/google/uuid"
)

// Admin owns locations, sessions and the attendance records admitted
// under them.
type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}
