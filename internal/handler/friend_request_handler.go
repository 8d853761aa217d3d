package handler

import (
	"net/http"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// SendFriendRequestInput names the user to befriend.
type SendFriendRequestInput struct {
	ReceiverID string `json:"receiverId" binding:"required" example:"6f1c2a9e-0d7b-4c1e-9a51-3b2f4d8e7c10"`
}

// endregion

type FriendRequestHandler struct {
	requests service.FriendRequestService
	logger   *zap.Logger
}

func NewFriendRequestHandler(requests service.FriendRequestService, logger *zap.Logger) *FriendRequestHandler {
	return &FriendRequestHandler{requests: requests, logger: logger}
}

// ListRequests godoc
// @Summary      List pending friend requests
// @Description  Returns the caller's pending requests, split into received and sent.
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.FriendRequests
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/requests [get]
func (h *FriendRequestHandler) ListRequests(c *gin.Context) {
	requests, err := h.requests.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch friend requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// SendRequest godoc
// @Summary      Send a friend request
// @Tags         friend-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendFriendRequestInput true "Receiver"
// @Success      201  {object}  models.FriendRequest
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /friends/requests [post]
func (h *FriendRequestHandler) SendRequest(c *gin.Context) {
	var input SendFriendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Receiver ID is required"})
		return
	}

	request, err := h.requests.Send(c.Request.Context(), auth.UserID(c), input.ReceiverID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to send friend request")
		return
	}
	c.JSON(http.StatusCreated, request)
}

// AcceptRequest godoc
// @Summary      Accept a friend request
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  models.Friendship
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/requests/{id}/accept [post]
func (h *FriendRequestHandler) AcceptRequest(c *gin.Context) {
	friendship, err := h.requests.Accept(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to accept friend request")
		return
	}
	c.JSON(http.StatusOK, friendship)
}

// DeclineRequest godoc
// @Summary      Decline a friend request
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  SuccessResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/requests/{id}/decline [post]
func (h *FriendRequestHandler) DeclineRequest(c *gin.Context) {
	if err := h.requests.Decline(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to decline friend request")
		return
	}
	respondSuccess(c)
}

// CancelRequest godoc
// @Summary      Cancel a sent friend request
// @Tags         friend-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  SuccessResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/requests/{id} [delete]
func (h *FriendRequestHandler) CancelRequest(c *gin.Context) {
	if err := h.requests.Cancel(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to cancel friend request")
		return
	}
	respondSuccess(c)
}
