package models

import (
	"time"

	"sagetracker/backend/internal/permissions"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendRequestStatus defines the state of a friend request.
type FriendRequestStatus string

const (
	// StatusPending means a friend request has been sent but not yet answered.
	StatusPending FriendRequestStatus = "pending"

	// StatusAccepted means the request was accepted and both friendship edges exist.
	StatusAccepted FriendRequestStatus = "accepted"

	// StatusDeclined means the receiver turned the request down.
	StatusDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a pending or answered invitation from Sender to Receiver.
type FriendRequest struct {
	ID         string              `json:"id" gorm:"type:varchar(36);primaryKey"`
	SenderID   string              `json:"senderId" gorm:"type:varchar(36);not null;index"`
	ReceiverID string              `json:"receiverId" gorm:"type:varchar(36);not null;index:idx_receiver_status"`
	Status     FriendRequestStatus `json:"status" gorm:"type:varchar(20);not null;index:idx_receiver_status"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Friendship is one directed edge: what UserID shares with FriendID.
// An accepted request materializes two independent edges, one per direction.
// The pair (UserID, FriendID) is unique.
type Friendship struct {
	ID          string                        `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string                        `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair"`
	FriendID    string                        `json:"friendId" gorm:"type:varchar(36);not null;uniqueIndex:idx_friendship_pair;index"`
	Permissions permissions.FriendPermissions `json:"permissions" gorm:"embedded"`
	CreatedAt   time.Time                     `json:"createdAt"`
	UpdatedAt   time.Time                     `json:"updatedAt"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
