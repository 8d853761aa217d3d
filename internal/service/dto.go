package service

import (
	"time"

	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"
)

// PublicUser is the part of a user anyone may see.
type PublicUser struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
}

func newPublicUser(u *models.User) PublicUser {
	return PublicUser{ID: u.ID, Username: u.DisplayName(), ProfileImageURL: u.ProfileImageURL}
}

// Profile is the caller's own account.
type Profile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        *string   `json:"username"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	HasUsername     bool      `json:"hasUsername"`
	CreatedAt       time.Time `json:"createdAt"`
}

func NewProfile(u *models.User) Profile {
	return Profile{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
		HasUsername:     u.Username != nil,
		CreatedAt:       u.CreatedAt,
	}
}

// FriendProfile is what a friend exposes. Email is present only when the
// friend shares their full profile.
type FriendProfile struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	Email           *string `json:"email,omitempty"`
}

// Friend is one mutual friendship seen from the caller's side.
type Friend struct {
	ID           string                        `json:"id"`
	FriendID     string                        `json:"friendId"`
	Permissions  permissions.FriendPermissions `json:"permissions"`
	SharedWithMe permissions.FriendPermissions `json:"sharedWithMe"`
	CreatedAt    time.Time                     `json:"createdAt"`
	Friend       FriendProfile                 `json:"friend"`
}

func newFriend(mine, theirs *models.Friendship, friend *models.User) Friend {
	profile := FriendProfile{ID: mine.FriendID, Username: friend.DisplayName()}
	if friend != nil {
		profile.ProfileImageURL = friend.ProfileImageURL
		if permissions.CanSee(theirs.Permissions, permissions.CapabilityFullProfile) {
			email := friend.Email
			profile.Email = &email
		}
	}
	return Friend{
		ID:           mine.ID,
		FriendID:     mine.FriendID,
		Permissions:  mine.Permissions,
		SharedWithMe: theirs.Permissions,
		CreatedAt:    mine.CreatedAt,
		Friend:       profile,
	}
}

// FriendRequest is a request plus the other party's public profile.
type FriendRequest struct {
	ID         string                     `json:"id"`
	SenderID   string                     `json:"senderId"`
	ReceiverID string                     `json:"receiverId"`
	Status     models.FriendRequestStatus `json:"status"`
	CreatedAt  time.Time                  `json:"createdAt"`
	Sender     *PublicUser                `json:"sender,omitempty"`
	Receiver   *PublicUser                `json:"receiver,omitempty"`
}

func newFriendRequest(r *models.FriendRequest) FriendRequest {
	return FriendRequest{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
}

// FriendRequests groups the caller's pending requests by direction.
type FriendRequests struct {
	Received []FriendRequest `json:"received"`
	Sent     []FriendRequest `json:"sent"`
}

// Location is one sample as returned to its owner.
type Location struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Bearing   *float64  `json:"bearing,omitempty"`
	DeviceID  *string   `json:"deviceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newLocation(l *models.Location) Location {
	return Location{
		ID:        l.ID,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Accuracy:  l.Accuracy,
		Altitude:  l.Altitude,
		Speed:     l.Speed,
		Bearing:   l.Bearing,
		DeviceID:  l.DeviceID,
		Timestamp: l.Timestamp,
	}
}

// LocationInput is a sample reported by a device.
type LocationInput struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Altitude  *float64
	Speed     *float64
	Bearing   *float64
	DeviceID  *string
	Timestamp *time.Time
}

// FriendLocation is a friend's latest sample. Location is nil when the
// friend has never reported one.
type FriendLocation struct {
	FriendID        string    `json:"friendId"`
	Username        string    `json:"username"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	Location        *Location `json:"location"`
}
