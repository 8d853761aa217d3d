package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user in the system.
type User struct {
	ID              string  `gorm:"type:varchar(36);primaryKey"`
	Email           string  `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string  `gorm:"size:255;not null"`
	Username        *string `gorm:"size:20;uniqueIndex"`
	ProfileImageURL *string `gorm:"size:1024"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the username, or "Unknown" before one is chosen.
func (u *User) DisplayName() string {
	if u == nil || u.Username == nil || *u.Username == "" {
		return "Unknown"
	}
	return *u.Username
}
