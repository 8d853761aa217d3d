package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is an immutable location sample reported by one of a user's devices.
type Location struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	UserID    string  `gorm:"type:varchar(36);not null;index:idx_location_user_ts,priority:1"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	Accuracy  *float64
	Altitude  *float64
	Speed     *float64
	Bearing   *float64
	DeviceID  *string   `gorm:"size:255"`
	Timestamp time.Time `gorm:"not null;index:idx_location_user_ts,priority:2"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return nil
}
