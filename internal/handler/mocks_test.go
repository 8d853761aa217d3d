package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sagetracker/backend/internal/auth"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"
	"sagetracker/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	RegisterFunc          func(ctx context.Context, email, password string) (*models.User, error)
	AuthenticateFunc      func(ctx context.Context, email, password string, client service.ClientInfo) (*models.User, error)
	LoginHistoryFunc      func(ctx context.Context, userID string) ([]models.LoginLog, error)
	GetByIDFunc           func(ctx context.Context, userID string) (*models.User, error)
	SearchFunc            func(ctx context.Context, callerID, query string) ([]service.PublicUser, error)
	UpdateUsernameFunc    func(ctx context.Context, userID, username string) error
	UsernameAvailableFunc func(ctx context.Context, username string) (bool, error)
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password)
	}
	return &models.User{ID: "user-1", Email: email}, nil
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string, client service.ClientInfo) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password, client)
	}
	return &models.User{ID: "user-1", Email: email}, nil
}

func (m *MockUserService) LoginHistory(ctx context.Context, userID string) ([]models.LoginLog, error) {
	if m.LoginHistoryFunc != nil {
		return m.LoginHistoryFunc(ctx, userID)
	}
	return []models.LoginLog{}, nil
}

func (m *MockUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID)
	}
	return &models.User{ID: userID}, nil
}

func (m *MockUserService) Search(ctx context.Context, callerID, query string) ([]service.PublicUser, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, callerID, query)
	}
	return nil, nil
}

func (m *MockUserService) UpdateUsername(ctx context.Context, userID, username string) error {
	if m.UpdateUsernameFunc != nil {
		return m.UpdateUsernameFunc(ctx, userID, username)
	}
	return nil
}

func (m *MockUserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if m.UsernameAvailableFunc != nil {
		return m.UsernameAvailableFunc(ctx, username)
	}
	return true, nil
}

// MockFriendshipService is a mock implementation of service.FriendshipService
type MockFriendshipService struct {
	ListFriendsFunc       func(ctx context.Context, userID string) ([]service.Friend, error)
	GetFriendFunc         func(ctx context.Context, userID, friendID string) (*service.Friend, error)
	UpdatePermissionsFunc func(ctx context.Context, userID, friendID string, patch permissions.Patch) (permissions.FriendPermissions, error)
	UnfriendFunc          func(ctx context.Context, userID, friendID string) error
}

func (m *MockFriendshipService) Create(ctx context.Context, userID, friendID string) (*models.Friendship, *models.Friendship, error) {
	return nil, nil, nil
}

func (m *MockFriendshipService) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	return false, nil
}

func (m *MockFriendshipService) ListFriends(ctx context.Context, userID string) ([]service.Friend, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockFriendshipService) GetFriend(ctx context.Context, userID, friendID string) (*service.Friend, error) {
	if m.GetFriendFunc != nil {
		return m.GetFriendFunc(ctx, userID, friendID)
	}
	return &service.Friend{FriendID: friendID}, nil
}

func (m *MockFriendshipService) MutualEdges(ctx context.Context, userID string) ([]models.Friendship, error) {
	return nil, nil
}

func (m *MockFriendshipService) UpdatePermissions(ctx context.Context, userID, friendID string, patch permissions.Patch) (permissions.FriendPermissions, error) {
	if m.UpdatePermissionsFunc != nil {
		return m.UpdatePermissionsFunc(ctx, userID, friendID, patch)
	}
	return permissions.Merge(permissions.Default(), patch), nil
}

func (m *MockFriendshipService) Unfriend(ctx context.Context, userID, friendID string) error {
	if m.UnfriendFunc != nil {
		return m.UnfriendFunc(ctx, userID, friendID)
	}
	return nil
}

func (m *MockFriendshipService) Reconcile(ctx context.Context) (int, error) {
	return 0, nil
}

// MockFriendRequestService is a mock implementation of service.FriendRequestService
type MockFriendRequestService struct {
	SendFunc    func(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	ListFunc    func(ctx context.Context, userID string) (*service.FriendRequests, error)
	AcceptFunc  func(ctx context.Context, receiverID, requestID string) (*models.Friendship, error)
	DeclineFunc func(ctx context.Context, receiverID, requestID string) error
	CancelFunc  func(ctx context.Context, senderID, requestID string) error
}

func (m *MockFriendRequestService) Send(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, senderID, receiverID)
	}
	return &models.FriendRequest{ID: "req-1", SenderID: senderID, ReceiverID: receiverID}, nil
}

func (m *MockFriendRequestService) List(ctx context.Context, userID string) (*service.FriendRequests, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return &service.FriendRequests{}, nil
}

func (m *MockFriendRequestService) Accept(ctx context.Context, receiverID, requestID string) (*models.Friendship, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, receiverID, requestID)
	}
	return &models.Friendship{}, nil
}

func (m *MockFriendRequestService) Decline(ctx context.Context, receiverID, requestID string) error {
	if m.DeclineFunc != nil {
		return m.DeclineFunc(ctx, receiverID, requestID)
	}
	return nil
}

func (m *MockFriendRequestService) Cancel(ctx context.Context, senderID, requestID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, senderID, requestID)
	}
	return nil
}

// MockLocationService is a mock implementation of service.LocationService
type MockLocationService struct {
	IngestFunc          func(ctx context.Context, userID string, in service.LocationInput) (*service.Location, error)
	HistoryFunc         func(ctx context.Context, userID string, limit int) ([]service.Location, error)
	HistoryBetweenFunc  func(ctx context.Context, userID string, start, end time.Time, limit int) ([]service.Location, error)
	FriendLocationsFunc func(ctx context.Context, userID string) ([]service.FriendLocation, error)
}

func (m *MockLocationService) Ingest(ctx context.Context, userID string, in service.LocationInput) (*service.Location, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, userID, in)
	}
	return &service.Location{ID: "loc-1", Latitude: in.Latitude, Longitude: in.Longitude, Timestamp: time.Now()}, nil
}

func (m *MockLocationService) History(ctx context.Context, userID string, limit int) ([]service.Location, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, limit)
	}
	return []service.Location{}, nil
}

func (m *MockLocationService) HistoryBetween(ctx context.Context, userID string, start, end time.Time, limit int) ([]service.Location, error) {
	if m.HistoryBetweenFunc != nil {
		return m.HistoryBetweenFunc(ctx, userID, start, end, limit)
	}
	return []service.Location{}, nil
}

func (m *MockLocationService) FriendLocations(ctx context.Context, userID string) ([]service.FriendLocation, error) {
	if m.FriendLocationsFunc != nil {
		return m.FriendLocationsFunc(ctx, userID)
	}
	return []service.FriendLocation{}, nil
}

// MockNotificationService is a mock implementation of service.NotificationService
type MockNotificationService struct {
	ListFunc          func(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error)
	MarkAsReadFunc    func(ctx context.Context, userID, notificationID string) error
	MarkAllAsReadFunc func(ctx context.Context, userID string) error
	UnreadCountFunc   func(ctx context.Context, userID string) (int64, error)
}

func (m *MockNotificationService) Notify(ctx context.Context, userID string, kind models.NotificationType, data models.NotificationData) (*models.Notification, error) {
	return &models.Notification{UserID: userID, Type: kind, Data: data}, nil
}

func (m *MockNotificationService) List(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, page, limit)
	}
	return nil, 0, nil
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	if m.MarkAsReadFunc != nil {
		return m.MarkAsReadFunc(ctx, userID, notificationID)
	}
	return nil
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if m.MarkAllAsReadFunc != nil {
		return m.MarkAllAsReadFunc(ctx, userID)
	}
	return nil
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, userID)
	}
	return 0, nil
}

// asUser returns a router whose requests are authenticated as userID.
func asUser(userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(auth.ContextUserID, userID)
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
