package handler

import (
	"net/http"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/permissions"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FriendHandler struct {
	friendships service.FriendshipService
	logger      *zap.Logger
}

func NewFriendHandler(friendships service.FriendshipService, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{friendships: friendships, logger: logger}
}

// ListFriends godoc
// @Summary      List friends
// @Description  Returns every mutual friend with the permissions in both directions.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   service.Friend
// @Failure      401  {object}  ErrorResponse
// @Router       /friends [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.friendships.ListFriends(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch friends")
		return
	}
	if friends == nil {
		friends = []service.Friend{}
	}
	c.JSON(http.StatusOK, friends)
}

// GetFriend godoc
// @Summary      Get a friend
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        friendId  path      string  true  "Friend's user ID"
// @Success      200  {object}  service.Friend
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{friendId} [get]
func (h *FriendHandler) GetFriend(c *gin.Context) {
	friend, err := h.friendships.GetFriend(c.Request.Context(), auth.UserID(c), c.Param("friendId"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch friend")
		return
	}
	c.JSON(http.StatusOK, friend)
}

// Unfriend godoc
// @Summary      Remove a friend
// @Description  Deletes the friendship in both directions and tells the other user.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        friendId  path      string  true  "Friend's user ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{friendId} [delete]
func (h *FriendHandler) Unfriend(c *gin.Context) {
	if err := h.friendships.Unfriend(c.Request.Context(), auth.UserID(c), c.Param("friendId")); err != nil {
		respondError(c, h.logger, err, "Failed to remove friend")
		return
	}
	respondSuccess(c)
}

// UpdatePermissions godoc
// @Summary      Update sharing permissions
// @Description  Changes what the caller shares with one friend. Omitted fields are left unchanged.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        friendId  path      string             true  "Friend's user ID"
// @Param        input     body      permissions.Patch  true  "Fields to change"
// @Success      200  {object}  permissions.FriendPermissions
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/{friendId}/permissions [patch]
func (h *FriendHandler) UpdatePermissions(c *gin.Context) {
	var patch permissions.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No permission fields provided"})
		return
	}

	updated, err := h.friendships.UpdatePermissions(c.Request.Context(), auth.UserID(c), c.Param("friendId"), patch)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update permissions")
		return
	}
	c.JSON(http.StatusOK, updated)
}
