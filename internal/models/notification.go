package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationFriendRequestReceived NotificationType = "friend_request_received"
	NotificationFriendRequestAccepted NotificationType = "friend_request_accepted"
)

// NotificationData carries the references a client needs to render a notification.
type NotificationData struct {
	FromUserID   string  `json:"fromUserId,omitempty" gorm:"column:from_user_id;type:varchar(36)"`
	FromUsername string  `json:"fromUsername,omitempty" gorm:"column:from_username;size:20"`
	RequestID    *string `json:"requestId,omitempty" gorm:"column:request_id;type:varchar(36)"`
	FriendshipID *string `json:"friendshipId,omitempty" gorm:"column:friendship_id;type:varchar(36)"`
}

// Notification is a durable per-user record, written whether or not the user is online.
type Notification struct {
	ID        string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string           `json:"userId" gorm:"type:varchar(36);not null;index:idx_notification_user_created,priority:1"`
	Type      NotificationType `json:"type" gorm:"type:varchar(50);not null"`
	Data      NotificationData `json:"data" gorm:"embedded"`
	Read      bool             `json:"read" gorm:"not null;default:false;index"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index:idx_notification_user_created,priority:2"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
