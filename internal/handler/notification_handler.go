package handler

import (
	"net/http"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// UnreadCountResponse carries the caller's unread notification count.
type UnreadCountResponse struct {
	Count int64 `json:"count" example:"3"`
}

// endregion

type NotificationHandler struct {
	notifications service.NotificationService
	logger        *zap.Logger
}

func NewNotificationHandler(notifications service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// ListNotifications godoc
// @Summary      List notifications
// @Description  Returns a page of the caller's notifications, newest first.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 50, max 100)"
// @Success      200  {object}  PaginatedResponse[models.Notification]
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	page, limit := pageParams(c, service.DefaultNotificationLimit, service.MaxNotificationLimit)

	notifications, total, err := h.notifications.List(c.Request.Context(), auth.UserID(c), page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch notifications")
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse[models.Notification](notifications, total, page, limit))
}

// GetUnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UnreadCountResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "Failed to mark notification as read")
		return
	}
	respondSuccess(c)
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notifications.MarkAllAsRead(c.Request.Context(), auth.UserID(c)); err != nil {
		respondError(c, h.logger, err, "Failed to mark notifications as read")
		return
	}
	respondSuccess(c)
}
