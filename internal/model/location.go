package model

import (
	"time"

	"github.com/google/uuid"

	"attendance-backend/internal/geofence"
)

// Location is a named geofenced zone owned by one admin. The shape is
// immutable after creation; deletion is refused while an active session
// references it.
type Location struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID   uuid.UUID          `gorm:"type:uuid;index;not null" json:"adminId"`
	Name      string             `gorm:"size:256;not null" json:"name"`
	ShapeType geofence.ShapeType `gorm:"size:16;not null" json:"shapeType"`
	Center    geofence.LatLng    `gorm:"serializer:json" json:"center"`
	Radius    float64            `json:"radius"`
	Path      []geofence.LatLng  `gorm:"serializer:json" json:"path,omitempty"`
	CreatedAt time.Time          `gorm:"not null" json:"createdAt"`
}

// Shape returns the zone geometry in the form the geofence evaluator takes.
func (l Location) Shape() geofence.Shape {
	return geofence.Shape{
		Type:         l.ShapeType,
		Center:       l.Center,
		RadiusMeters: l.Radius,
		Path:         l.Path,
	}
}
