package handler

import (
	"net/http"
	"time"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	GenerateToken(userID string, ttl time.Duration) (string, error)
}

// TokenTTLs sets the lifetime of each kind of token.
type TokenTTLs struct {
	Session time.Duration
	Mobile  time.Duration
	Socket  time.Duration
}

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Email    string `json:"email" example:"test@example.com"`
	Password string `json:"password" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" example:"test@example.com"`
	Password string `json:"password" example:"password123"`
}

// AuthResponse carries a fresh token and the account it was issued for.
type AuthResponse struct {
	Token string          `json:"token"`
	User  service.Profile `json:"user"`
}

// TokenResponse carries a single token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn" example:"3600"`
}

// endregion

type AuthHandler struct {
	users  service.UserService
	issuer TokenIssuer
	ttls   TokenTTLs
	logger *zap.Logger
}

func NewAuthHandler(users service.UserService, issuer TokenIssuer, ttls TokenTTLs, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, ttls: ttls, logger: logger}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, h.logger, err, "Registration failed")
		return
	}

	token, err := h.issuer.GenerateToken(user.ID, h.ttls.Session)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: service.NewProfile(user)})
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with email and password and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, h.ttls.Session)
}

// MobileLogin godoc
// @Summary      Log in from a mobile device
// @Description  Same as login but issues a long-lived bearer token for background location reporting.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/mobile-login [post]
func (h *AuthHandler) MobileLogin(c *gin.Context) {
	h.login(c, h.ttls.Mobile)
}

func (h *AuthHandler) login(c *gin.Context, ttl time.Duration) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	client := service.ClientInfo{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	user, err := h.users.Authenticate(c.Request.Context(), input.Email, input.Password, client)
	if err != nil {
		h.logger.Info("login attempt failed",
			zap.String("client_ip", client.IPAddress),
			zap.String("user_agent", client.UserAgent))
		respondError(c, h.logger, err, "Login failed")
		return
	}

	token, err := h.issuer.GenerateToken(user.ID, ttl)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: service.NewProfile(user)})
}

// SocketToken godoc
// @Summary      Get a socket token
// @Description  Issues a short-lived token for opening the event socket.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  TokenResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/socket-token [get]
func (h *AuthHandler) SocketToken(c *gin.Context) {
	token, err := h.issuer.GenerateToken(auth.UserID(c), h.ttls.Socket)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresIn: int64(h.ttls.Socket.Seconds())})
}
