package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the session lifecycle tag. The only transition is
// Active -> Ended; Ended is terminal. EndTime is populated in the same
// update that applies the transition, so an active session never carries
// an end time.
type SessionState string

const (
	SessionActive SessionState = "active"
	SessionEnded  SessionState = "ended"
)

// Session is a time-bounded attendance window bound to one location.
// Sessions are never deleted; ended sessions remain as historical record.
type Session struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string       `gorm:"size:256;not null" json:"name"`
	LocationID uuid.UUID    `gorm:"type:uuid;index;not null" json:"locationId"`
	AdminID    uuid.UUID    `gorm:"type:uuid;index;not null" json:"adminId"`
	State      SessionState `gorm:"size:16;not null;index" json:"state"`
	StartTime  time.Time    `gorm:"not null" json:"startTime"`
	EndTime    *time.Time   `json:"endTime,omitempty"`
	ReportPath string       `gorm:"size:512" json:"reportPath,omitempty"`

	// Associations
	Location Location `gorm:"foreignKey:LocationID" json:"location"`
}

// Active reports whether the session still accepts attendance marks.
func (s Session) Active() bool {
	return s.State == SessionActive
}
