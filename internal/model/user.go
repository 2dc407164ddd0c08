package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an attendee with an enrollment face descriptor captured at
// registration. The descriptor is an opaque float vector; the matching
// model that produced it is outside this service.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:256;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash   string    `gorm:"size:128;not null" json:"-"`
	FaceDescriptor []float64 `gorm:"serializer:json" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
}
