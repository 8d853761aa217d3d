package handler

import (
	"net/http"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// UpdateUsernameInput defines the structure for choosing a username.
type UpdateUsernameInput struct {
	Username string `json:"username" binding:"required" example:"new_username"`
}

// UsernameAvailableResponse reports whether a username can be claimed.
type UsernameAvailableResponse struct {
	Username  string `json:"username" example:"new_username"`
	Available bool   `json:"available" example:"true"`
}

// endregion

type UserHandler struct {
	users  service.UserService
	logger *zap.Logger
}

func NewUserHandler(users service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the profile of the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.Profile
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, service.NewProfile(user))
}

// GetLoginHistory godoc
// @Summary      Get recent login attempts
// @Description  Lists the caller's most recent email/password login attempts, newest first.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.LoginLog
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/logins [get]
func (h *UserHandler) GetLoginHistory(c *gin.Context) {
	logs, err := h.users.LoginHistory(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load login history")
		return
	}
	c.JSON(http.StatusOK, logs)
}

// SearchUsers godoc
// @Summary      Search users
// @Description  Finds users whose username starts with the query. Queries shorter than two characters return nothing.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q   query     string  true  "Username prefix"
// @Success      200  {array}   service.PublicUser
// @Failure      401  {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), auth.UserID(c), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to search users")
		return
	}
	if users == nil {
		users = []service.PublicUser{}
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUsername godoc
// @Summary      Set username
// @Description  Sets the caller's username. Friends are told about the change.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateUsernameInput true "New username"
// @Success      200  {object}  service.Profile
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/me/username [put]
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	var input UpdateUsernameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Username is required"})
		return
	}

	ctx := c.Request.Context()
	userID := auth.UserID(c)
	if err := h.users.UpdateUsername(ctx, userID, input.Username); err != nil {
		respondError(c, h.logger, err, "Failed to update username")
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, service.NewProfile(user))
}

// UsernameAvailable godoc
// @Summary      Check username availability
// @Tags         users
// @Produce      json
// @Param        username  query     string  true  "Username to check"
// @Success      200  {object}  UsernameAvailableResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /users/username-available [get]
func (h *UserHandler) UsernameAvailable(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Username is required"})
		return
	}

	available, err := h.users.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		respondError(c, h.logger, err, "Failed to check username")
		return
	}
	c.JSON(http.StatusOK, UsernameAvailableResponse{Username: username, Available: available})
}
