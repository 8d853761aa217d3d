package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnknownUserID marks a login attempt for an email with no account.
const UnknownUserID = "unknown"

// LoginLog records one email/password login attempt, successful or not.
type LoginLog struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index:idx_login_log_user_time,priority:1"`
	Email     string    `json:"email" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"column:attempted_at;not null;index:idx_login_log_user_time,priority:2"`
	Success   bool      `json:"success" gorm:"not null"`
	IPAddress string    `json:"ipAddress" gorm:"size:64"`
	UserAgent string    `json:"userAgent"`
}

func (l *LoginLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
