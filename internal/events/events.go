// Package events defines the named events pushed to live client connections.
// Each variant carries its own typed payload; Name is the wire-level event name.
package events

import (
	"encoding/json"
	"time"

	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"
)

// Name is the event name clients subscribe to.
type Name string

const (
	NameNotification           Name = "notification"
	NameFriendAdded            Name = "friend_added"
	NameFriendRemoved          Name = "friend_removed"
	NameFriendRequestDeclined  Name = "friend_request_declined"
	NameFriendRequestCancelled Name = "friend_request_cancelled"
	NamePermissionsUpdated     Name = "permissions_updated"
	NameFriendProfileUpdated   Name = "friend_profile_updated"
	NameLocationUpdate         Name = "location_update"
)

// Event is implemented by every pushable event variant.
type Event interface {
	Name() Name
}

// Envelope is the frame written to the transport.
type Envelope struct {
	Event Name  `json:"event"`
	Data  Event `json:"data"`
}

// Encode renders e as a JSON envelope frame.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(Envelope{Event: e.Name(), Data: e})
}

// Notification pushes a freshly persisted notification record.
type Notification struct {
	models.Notification
}

func (Notification) Name() Name { return NameNotification }

type FriendAdded struct {
	FriendshipID string `json:"friendshipId"`
	FriendID     string `json:"friendId"`
}

func (FriendAdded) Name() Name { return NameFriendAdded }

type FriendRemoved struct {
	ByUserID string `json:"byUserId"`
}

func (FriendRemoved) Name() Name { return NameFriendRemoved }

type FriendRequestDeclined struct {
	RequestID string `json:"requestId"`
	ByUserID  string `json:"byUserId"`
}

func (FriendRequestDeclined) Name() Name { return NameFriendRequestDeclined }

type FriendRequestCancelled struct {
	RequestID string `json:"requestId"`
	ByUserID  string `json:"byUserId"`
}

func (FriendRequestCancelled) Name() Name { return NameFriendRequestCancelled }

// PermissionsUpdated tells a friend what FriendID now shares with them.
type PermissionsUpdated struct {
	FriendID    string                        `json:"friendId"`
	Permissions permissions.FriendPermissions `json:"permissions"`
}

func (PermissionsUpdated) Name() Name { return NamePermissionsUpdated }

type FriendProfileUpdated struct {
	FriendID        string  `json:"friendId"`
	Username        string  `json:"username"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
}

func (FriendProfileUpdated) Name() Name { return NameFriendProfileUpdated }

// LocationPoint is the subset of a sample shared with friends.
type LocationPoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type LocationUpdate struct {
	FriendID        string        `json:"friendId"`
	Username        string        `json:"username"`
	ProfileImageURL *string       `json:"profileImageUrl,omitempty"`
	Location        LocationPoint `json:"location"`
}

func (LocationUpdate) Name() Name { return NameLocationUpdate }
