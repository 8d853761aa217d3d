package handler

import (
	"net/http"

	"sagetracker/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// ConnectionLister reports the live connections of a user.
type ConnectionLister interface {
	ListConnections(userID string) []string
}

// PresenceResponse lists the caller's live socket connections.
type PresenceResponse struct {
	UserID      string   `json:"userId"`
	Online      bool     `json:"online"`
	Connections []string `json:"connections"`
}

type PresenceHandler struct {
	presence ConnectionLister
}

func NewPresenceHandler(presence ConnectionLister) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// GetMyPresence godoc
// @Summary      Get own presence
// @Description  Lists the caller's currently open socket connections.
// @Tags         presence
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PresenceResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /presence/me [get]
func (h *PresenceHandler) GetMyPresence(c *gin.Context) {
	userID := auth.UserID(c)
	connections := h.presence.ListConnections(userID)
	if connections == nil {
		connections = []string{}
	}
	c.JSON(http.StatusOK, PresenceResponse{
		UserID:      userID,
		Online:      len(connections) > 0,
		Connections: connections,
	})
}
