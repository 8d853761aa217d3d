package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"sagetracker/backend/internal/events"
	"sagetracker/backend/internal/hub"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	minSearchLength   = 2
	searchLimit       = 20
	loginHistoryLimit = 50
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ClientInfo identifies where a login attempt came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type UserService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	// Authenticate checks the credentials and records the attempt.
	Authenticate(ctx context.Context, email, password string, client ClientInfo) (*models.User, error)
	// LoginHistory returns the caller's recent login attempts, newest first.
	LoginHistory(ctx context.Context, userID string) ([]models.LoginLog, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Search(ctx context.Context, callerID, query string) ([]PublicUser, error)
	UpdateUsername(ctx context.Context, userID, username string) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
}

type userService struct {
	users       repository.UserRepository
	loginLogs   repository.LoginLogRepository
	friendships FriendshipService
	emitter     hub.Emitter
	logger      *zap.Logger
	bcryptCost  int
}

func NewUserService(
	users repository.UserRepository,
	loginLogs repository.LoginLogRepository,
	friendships FriendshipService,
	emitter hub.Emitter,
	logger *zap.Logger,
) UserService {
	return &userService{
		users:       users,
		loginLogs:   loginLogs,
		friendships: friendships,
		emitter:     emitter,
		logger:      logger.With(zap.String("component", "user_service")),
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, newError(ErrInvalidInput, "Email and password are required")
	}
	if len(password) < minPasswordLength {
		return nil, newError(ErrInvalidInput, "Password must be at least 8 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, newError(ErrInvalidInput, "Invalid email format")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "An account with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("userId", user.ID))
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string, client ClientInfo) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, newError(ErrInvalidInput, "Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("login failed", zap.String("reason", "unknown email"))
			s.recordLogin(ctx, email, models.UnknownUserID, false, client)
			return nil, newError(ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed", zap.String("reason", "wrong password"), zap.String("userId", user.ID))
		s.recordLogin(ctx, email, user.ID, false, client)
		return nil, newError(ErrInvalidCredentials, "Invalid email or password")
	}
	s.logger.Info("login succeeded", zap.String("userId", user.ID))
	s.recordLogin(ctx, email, user.ID, true, client)
	return user, nil
}

// recordLogin stores the attempt. A failed write never changes the login
// outcome.
func (s *userService) recordLogin(ctx context.Context, email, userID string, success bool, client ClientInfo) {
	entry := &models.LoginLog{
		UserID:    userID,
		Email:     strings.ToLower(email),
		Timestamp: time.Now().UTC(),
		Success:   success,
		IPAddress: orUnknown(client.IPAddress),
		UserAgent: orUnknown(client.UserAgent),
	}
	if err := s.loginLogs.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record login attempt", zap.String("userId", userID), zap.Error(err))
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func (s *userService) LoginHistory(ctx context.Context, userID string) ([]models.LoginLog, error) {
	logs, err := s.loginLogs.FindByUser(ctx, userID, loginHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("find login history: %w", err)
	}
	if logs == nil {
		logs = []models.LoginLog{}
	}
	return logs, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, callerID, query string) ([]PublicUser, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return []PublicUser{}, nil
	}

	users, err := s.users.SearchByUsername(ctx, query, callerID, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	result := make([]PublicUser, 0, len(users))
	for i := range users {
		result = append(result, newPublicUser(&users[i]))
	}
	return result, nil
}

func (s *userService) UpdateUsername(ctx context.Context, userID, username string) error {
	if username == "" {
		return newError(ErrInvalidInput, "Username is required")
	}
	if !usernamePattern.MatchString(username) {
		return newError(ErrInvalidInput, "Username must be 3-20 characters and contain only letters, numbers, and underscores")
	}

	if existing, err := s.users.FindByUsername(ctx, username); err == nil && existing.ID != userID {
		return newError(ErrConflict, "Username already taken")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("find username: %w", err)
	}

	if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return newError(ErrConflict, "Username already taken")
		case errors.Is(err, repository.ErrNotFound):
			return newError(ErrNotFound, "User not found")
		}
		return fmt.Errorf("update username: %w", err)
	}

	s.notifyProfileUpdated(ctx, userID, username)
	return nil
}

func (s *userService) notifyProfileUpdated(ctx context.Context, userID, username string) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for profile update", zap.String("userId", userID), zap.Error(err))
		return
	}
	edges, err := s.friendships.MutualEdges(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load friends for profile update", zap.String("userId", userID), zap.Error(err))
		return
	}
	for _, edge := range edges {
		s.emitter.EmitToUser(edge.FriendID, events.FriendProfileUpdated{
			FriendID:        userID,
			Username:        username,
			ProfileImageURL: user.ProfileImageURL,
		})
	}
}

func (s *userService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, newError(ErrInvalidInput, "Username parameter required")
	}
	_, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("find username: %w", err)
	}
	return false, nil
}
