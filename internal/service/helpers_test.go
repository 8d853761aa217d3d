package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sagetracker/backend/internal/cache"
	"sagetracker/backend/internal/events"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"
	"sagetracker/backend/internal/repository"
	"sagetracker/backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type emitted struct {
	userID string
	event  events.Event
}

// recordingEmitter captures every emit synchronously.
type recordingEmitter struct {
	mu   sync.Mutex
	sent []emitted
}

func (r *recordingEmitter) EmitToUser(userID string, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, emitted{userID: userID, event: event})
}

func (r *recordingEmitter) to(userID string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.sent {
		if e.userID == userID {
			out = append(out, e.event)
		}
	}
	return out
}

func (r *recordingEmitter) names(userID string) []events.Name {
	var out []events.Name
	for _, e := range r.to(userID) {
		out = append(out, e.Name())
	}
	return out
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// MockFriendshipRepository delegates to a real repository unless a func
// field overrides the call.
type MockFriendshipRepository struct {
	repository.FriendshipRepository
	CreateFunc func(ctx context.Context, friendship *models.Friendship) error
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, friendship)
	}
	return m.FriendshipRepository.Create(ctx, friendship)
}

func (m *MockFriendshipRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return m.FriendshipRepository.Delete(ctx, id)
}

type testEnv struct {
	db            *gorm.DB
	emitter       *recordingEmitter
	userRepo      repository.UserRepository
	friendRepo    *MockFriendshipRepository
	requestRepo   repository.FriendRequestRepository
	locationRepo  repository.LocationRepository
	notifRepo     repository.NotificationRepository
	loginLogRepo  repository.LoginLogRepository
	users         UserService
	friendships   FriendshipService
	requests      FriendRequestService
	locations     LocationService
	notifications NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := zap.NewNop()
	emitter := &recordingEmitter{}

	env := &testEnv{
		db:           db,
		emitter:      emitter,
		userRepo:     repository.NewUserRepository(db),
		friendRepo:   &MockFriendshipRepository{FriendshipRepository: repository.NewFriendshipRepository(db)},
		requestRepo:  repository.NewFriendRequestRepository(db),
		locationRepo: repository.NewLocationRepository(db),
		notifRepo:    repository.NewNotificationRepository(db),
		loginLogRepo: repository.NewLoginLogRepository(db),
	}
	env.friendships = NewFriendshipService(env.friendRepo, env.userRepo, emitter, logger)
	env.notifications = NewNotificationService(env.notifRepo, cache.NewUnreadCache(nil, time.Minute, logger), emitter, logger)
	env.users = NewUserService(env.userRepo, env.loginLogRepo, env.friendships, emitter, logger)
	env.requests = NewFriendRequestService(env.requestRepo, env.userRepo, env.friendships, env.notifications, emitter, logger)
	env.locations = NewLocationService(env.locationRepo, env.userRepo, env.friendships, emitter, nil, logger)
	return env
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	return testutil.CreateUser(t, e.db, username)
}

// befriend creates both edges and returns them.
func (e *testEnv) befriend(t *testing.T, a, b *models.User) (ab, ba *models.Friendship) {
	t.Helper()
	ab, ba, err := e.friendships.Create(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	return ab, ba
}

func (e *testEnv) share(t *testing.T, from, to *models.User, patch permissions.Patch) {
	t.Helper()
	_, err := e.friendships.UpdatePermissions(context.Background(), from.ID, to.ID, patch)
	require.NoError(t, err)
}

// advanceClock moves the friendship service's clock past the one-sided grace period.
func (e *testEnv) advanceClock() {
	e.friendships.(*friendshipService).now = func() time.Time {
		return time.Now().Add(2 * oneSidedGrace)
	}
}

func boolPtr(b bool) *bool { return &b }

func zapNop() *zap.Logger { return zap.NewNop() }
