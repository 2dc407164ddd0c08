package model

import (
	"time"

	"github.com/google/uuid"
)

// Attendance records one user's admission to one session. The composite
// unique index makes the (user, session) pair the storage-level identity:
// a concurrent second insert loses deterministically and the caller falls
// back to returning the existing row. Records are never mutated or deleted.
type Attendance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_user_session" json:"userId"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_user_session" json:"sessionId"`
	// AdminID is denormalized from the session at creation so admin-scoped
	// listings do not need a join.
	AdminID       uuid.UUID `gorm:"type:uuid;index;not null" json:"adminId"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
	Verified      bool      `gorm:"not null" json:"isVerified"`
	AdminOverride bool      `gorm:"not null" json:"adminOverride"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"user"`
}
