package handler

import (
	"net/http"
	"strconv"
	"time"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// LocationInput is a sample reported by a device.
type LocationInput struct {
	Latitude  *float64   `json:"latitude" example:"52.52"`
	Longitude *float64   `json:"longitude" example:"13.405"`
	Accuracy  *float64   `json:"accuracy,omitempty" example:"12.5"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Bearing   *float64   `json:"bearing,omitempty"`
	DeviceID  *string    `json:"deviceId,omitempty" example:"pixel-8"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// endregion

type LocationHandler struct {
	locations service.LocationService
	logger    *zap.Logger
}

func NewLocationHandler(locations service.LocationService, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{locations: locations, logger: logger}
}

// ReportLocation godoc
// @Summary      Report a location sample
// @Description  Stores the sample and pushes it to friends the caller shares location with.
// @Tags         location
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body LocationInput true "Location sample"
// @Success      201  {object}  service.Location
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /location [post]
func (h *LocationHandler) ReportLocation(c *gin.Context) {
	var input LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if input.Latitude == nil || input.Longitude == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Latitude and longitude are required"})
		return
	}

	location, err := h.locations.Ingest(c.Request.Context(), auth.UserID(c), service.LocationInput{
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
		Accuracy:  input.Accuracy,
		Altitude:  input.Altitude,
		Speed:     input.Speed,
		Bearing:   input.Bearing,
		DeviceID:  input.DeviceID,
		Timestamp: input.Timestamp,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to save location")
		return
	}
	c.JSON(http.StatusCreated, location)
}

// GetHistory godoc
// @Summary      Get own location history
// @Description  Returns the caller's most recent samples, newest first. With from and to, only samples in that window.
// @Tags         location
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int     false  "Max samples (default 100, max 1000)"
// @Param        from   query     string  false  "Window start (RFC 3339)"
// @Param        to     query     string  false  "Window end (RFC 3339)"
// @Success      200  {array}   service.Location
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /location [get]
func (h *LocationHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = service.DefaultHistoryLimit
	}

	ctx := c.Request.Context()
	userID := auth.UserID(c)

	var history []service.Location
	from, to := c.Query("from"), c.Query("to")
	switch {
	case from == "" && to == "":
		history, err = h.locations.History(ctx, userID, limit)
	case from == "" || to == "":
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Both from and to are required"})
		return
	default:
		start, perr := time.Parse(time.RFC3339, from)
		end, perr2 := time.Parse(time.RFC3339, to)
		if perr != nil || perr2 != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from and to must be RFC 3339 timestamps"})
			return
		}
		history, err = h.locations.HistoryBetween(ctx, userID, start, end, limit)
	}
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch location history")
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetFriendLocations godoc
// @Summary      Get friends' latest locations
// @Description  Returns the latest sample of every friend who shares their location with the caller.
// @Tags         location
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   service.FriendLocation
// @Failure      401  {object}  ErrorResponse
// @Router       /locations/friends [get]
func (h *LocationHandler) GetFriendLocations(c *gin.Context) {
	locations, err := h.locations.FriendLocations(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch friend locations")
		return
	}
	c.JSON(http.StatusOK, locations)
}
