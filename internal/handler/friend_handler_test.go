package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"
	"sagetracker/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFriendRouter(friends *MockFriendshipService, requests *MockFriendRequestService, userID string) http.Handler {
	fh := NewFriendHandler(friends, zap.NewNop())
	rh := NewFriendRequestHandler(requests, zap.NewNop())
	r := asUser(userID)
	r.GET("/friends", fh.ListFriends)
	r.GET("/friends/requests", rh.ListRequests)
	r.POST("/friends/requests", rh.SendRequest)
	r.DELETE("/friends/requests/:id", rh.CancelRequest)
	r.POST("/friends/requests/:id/accept", rh.AcceptRequest)
	r.POST("/friends/requests/:id/decline", rh.DeclineRequest)
	r.GET("/friends/:friendId", fh.GetFriend)
	r.DELETE("/friends/:friendId", fh.Unfriend)
	r.PATCH("/friends/:friendId/permissions", fh.UpdatePermissions)
	return r
}

func TestFriendHandler_ListFriendsEmpty(t *testing.T) {
	w := doJSON(t, newFriendRouter(&MockFriendshipService{}, &MockFriendRequestService{}, "u1"), http.MethodGet, "/friends", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestFriendHandler_GetFriendNotFound(t *testing.T) {
	friends := &MockFriendshipService{GetFriendFunc: func(ctx context.Context, userID, friendID string) (*service.Friend, error) {
		return nil, &service.Error{Kind: service.ErrNotFound, Message: "Friend not found"}
	}}

	w := doJSON(t, newFriendRouter(friends, &MockFriendRequestService{}, "u1"), http.MethodGet, "/friends/u2", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Friend not found", decode[ErrorResponse](t, w).Error)
}

func TestFriendHandler_UpdatePermissions(t *testing.T) {
	t.Run("empty patch is rejected", func(t *testing.T) {
		called := false
		friends := &MockFriendshipService{UpdatePermissionsFunc: func(ctx context.Context, userID, friendID string, patch permissions.Patch) (permissions.FriendPermissions, error) {
			called = true
			return permissions.FriendPermissions{}, nil
		}}

		w := doJSON(t, newFriendRouter(friends, &MockFriendRequestService{}, "u1"), http.MethodPatch, "/friends/u2/permissions", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("partial patch is forwarded", func(t *testing.T) {
		var got permissions.Patch
		var gotFriend string
		friends := &MockFriendshipService{UpdatePermissionsFunc: func(ctx context.Context, userID, friendID string, patch permissions.Patch) (permissions.FriendPermissions, error) {
			got, gotFriend = patch, friendID
			return permissions.Merge(permissions.Default(), patch), nil
		}}

		w := doJSON(t, newFriendRouter(friends, &MockFriendRequestService{}, "u1"), http.MethodPatch, "/friends/u2/permissions", map[string]bool{"seeLocation": true})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u2", gotFriend)
		require.NotNil(t, got.SeeLocation)
		assert.True(t, *got.SeeLocation)
		assert.Nil(t, got.SeeActivity)
		assert.Equal(t, permissions.FriendPermissions{SeeLocation: true}, decode[permissions.FriendPermissions](t, w))
	})
}

func TestFriendHandler_Unfriend(t *testing.T) {
	friends := &MockFriendshipService{UnfriendFunc: func(ctx context.Context, userID, friendID string) error {
		return errors.New("db down")
	}}

	w := doJSON(t, newFriendRouter(friends, &MockFriendRequestService{}, "u1"), http.MethodDelete, "/friends/u2", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to remove friend", decode[ErrorResponse](t, w).Error)
}

func TestFriendRequestHandler_Send(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		w := doJSON(t, newFriendRouter(&MockFriendshipService{}, &MockFriendRequestService{}, "u1"), http.MethodPost, "/friends/requests", SendFriendRequestInput{ReceiverID: "u2"})

		require.Equal(t, http.StatusCreated, w.Code)
		req := decode[models.FriendRequest](t, w)
		assert.Equal(t, "u1", req.SenderID)
		assert.Equal(t, "u2", req.ReceiverID)
	})

	t.Run("missing receiver", func(t *testing.T) {
		w := doJSON(t, newFriendRouter(&MockFriendshipService{}, &MockFriendRequestService{}, "u1"), http.MethodPost, "/friends/requests", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("already friends", func(t *testing.T) {
		requests := &MockFriendRequestService{SendFunc: func(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
			return nil, &service.Error{Kind: service.ErrInvalidInput, Message: "Already friends"}
		}}
		w := doJSON(t, newFriendRouter(&MockFriendshipService{}, requests, "u1"), http.MethodPost, "/friends/requests", SendFriendRequestInput{ReceiverID: "u2"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Already friends", decode[ErrorResponse](t, w).Error)
	})
}

func TestFriendRequestHandler_Transitions(t *testing.T) {
	var calls []string
	requests := &MockFriendRequestService{
		AcceptFunc: func(ctx context.Context, receiverID, requestID string) (*models.Friendship, error) {
			calls = append(calls, "accept:"+requestID)
			return &models.Friendship{UserID: receiverID}, nil
		},
		DeclineFunc: func(ctx context.Context, receiverID, requestID string) error {
			calls = append(calls, "decline:"+requestID)
			return &service.Error{Kind: service.ErrForbidden, Message: "Not authorized to decline this request"}
		},
		CancelFunc: func(ctx context.Context, senderID, requestID string) error {
			calls = append(calls, "cancel:"+requestID)
			return nil
		},
	}
	r := newFriendRouter(&MockFriendshipService{}, requests, "u1")

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/friends/requests/r1/accept", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, r, http.MethodPost, "/friends/requests/r2/decline", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodDelete, "/friends/requests/r3", nil).Code)

	assert.Equal(t, []string{"accept:r1", "decline:r2", "cancel:r3"}, calls)
}
