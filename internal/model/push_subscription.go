package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Every subscription receives every lifecycle event; the client filters
// what it cares about.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
