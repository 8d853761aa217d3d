package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sagetracker/backend/internal/events"
	"sagetracker/backend/internal/hub"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"
	"sagetracker/backend/internal/repository"

	"go.uber.org/zap"
)

const (
	// An edge whose reverse is missing for longer than this is abandoned
	// rather than mid-creation.
	oneSidedGrace  = time.Minute
	reconcileBatch = 500
)

// FriendshipService manages pairs of directed friendship edges.
//
// The two edges of a pair are written independently. An edge whose reverse
// is missing (one-sided) is pending deletion: it grants nothing, is hidden
// from every read, and is removed by read-repair or Reconcile.
type FriendshipService interface {
	// Create materializes both edges with default-closed permissions.
	Create(ctx context.Context, userID, friendID string) (mine, theirs *models.Friendship, err error)
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]Friend, error)
	GetFriend(ctx context.Context, userID, friendID string) (*Friend, error)
	// MutualEdges returns userID's outgoing edges whose reverse exists.
	MutualEdges(ctx context.Context, userID string) ([]models.Friendship, error)
	UpdatePermissions(ctx context.Context, userID, friendID string, patch permissions.Patch) (permissions.FriendPermissions, error)
	Unfriend(ctx context.Context, userID, friendID string) error
	// Reconcile deletes one-sided edges older than the grace period.
	Reconcile(ctx context.Context) (int, error)
}

type friendshipService struct {
	friendships repository.FriendshipRepository
	users       repository.UserRepository
	emitter     hub.Emitter
	logger      *zap.Logger
	now         func() time.Time
}

func NewFriendshipService(
	friendships repository.FriendshipRepository,
	users repository.UserRepository,
	emitter hub.Emitter,
	logger *zap.Logger,
) FriendshipService {
	return &friendshipService{
		friendships: friendships,
		users:       users,
		emitter:     emitter,
		logger:      logger.With(zap.String("component", "friendship_service")),
		now:         time.Now,
	}
}

func (s *friendshipService) Create(ctx context.Context, userID, friendID string) (*models.Friendship, *models.Friendship, error) {
	mine, createdMine, err := s.ensureEdge(ctx, userID, friendID)
	if err != nil {
		return nil, nil, fmt.Errorf("create friendship %s->%s: %w", userID, friendID, err)
	}

	theirs, _, err := s.ensureEdge(ctx, friendID, userID)
	if err != nil {
		if createdMine {
			if cerr := s.friendships.Delete(ctx, mine.ID); cerr != nil {
				// Left one-sided; Reconcile removes it.
				s.logger.Error("failed to compensate friendship edge",
					zap.String("friendshipId", mine.ID),
					zap.String("userId", userID),
					zap.String("friendId", friendID),
					zap.Error(cerr))
			}
		}
		return nil, nil, fmt.Errorf("create friendship %s->%s: %w", friendID, userID, err)
	}

	return mine, theirs, nil
}

// ensureEdge returns a default-closed edge, creating it if needed. A leftover
// edge is reused so a retried accept does not trip the unique pair, but its
// grants are reset: they belonged to a friendship that no longer exists.
func (s *friendshipService) ensureEdge(ctx context.Context, userID, friendID string) (*models.Friendship, bool, error) {
	existing, err := s.friendships.FindBetween(ctx, userID, friendID)
	if err == nil {
		if existing.Permissions != permissions.Default() {
			if err := s.friendships.UpdatePermissions(ctx, existing.ID, permissions.Default()); err != nil {
				return nil, false, fmt.Errorf("reset leftover edge: %w", err)
			}
			existing.Permissions = permissions.Default()
		}
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	edge := &models.Friendship{UserID: userID, FriendID: friendID, Permissions: permissions.Default()}
	if err := s.friendships.Create(ctx, edge); err != nil {
		return nil, false, err
	}
	return edge, true, nil
}

func (s *friendshipService) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	_, _, err := s.pair(ctx, userID, friendID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// pair loads both edges. A missing edge in either direction is ErrNotFound.
func (s *friendshipService) pair(ctx context.Context, userID, friendID string) (*models.Friendship, *models.Friendship, error) {
	mine, err := s.friendships.FindBetween(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, newError(ErrNotFound, "Friend not found")
		}
		return nil, nil, err
	}
	theirs, err := s.friendships.FindBetween(ctx, friendID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, newError(ErrNotFound, "Friend not found")
		}
		return nil, nil, err
	}
	return mine, theirs, nil
}

func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	mine, reverse, err := s.edges(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(mine))
	for _, edge := range mine {
		ids = append(ids, edge.FriendID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	friends := make([]Friend, 0, len(mine))
	for i := range mine {
		edge := &mine[i]
		theirs, ok := reverse[edge.FriendID]
		if !ok {
			s.repair(ctx, edge)
			continue
		}
		friends = append(friends, newFriend(edge, theirs, users[edge.FriendID]))
	}
	return friends, nil
}

// edges returns userID's outgoing edges and the incoming ones keyed by owner.
func (s *friendshipService) edges(ctx context.Context, userID string) ([]models.Friendship, map[string]*models.Friendship, error) {
	mine, err := s.friendships.FindByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	incoming, err := s.friendships.FindByFriend(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	reverse := make(map[string]*models.Friendship, len(incoming))
	for i := range incoming {
		reverse[incoming[i].UserID] = &incoming[i]
	}
	return mine, reverse, nil
}

// repair deletes a one-sided edge found on a read path. Best-effort: a
// failure is left for Reconcile.
func (s *friendshipService) repair(ctx context.Context, edge *models.Friendship) {
	if s.now().Sub(edge.CreatedAt) < oneSidedGrace {
		return
	}
	if err := s.friendships.Delete(ctx, edge.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to repair one-sided friendship",
			zap.String("friendshipId", edge.ID),
			zap.Error(err))
		return
	}
	s.logger.Info("repaired one-sided friendship",
		zap.String("friendshipId", edge.ID),
		zap.String("userId", edge.UserID),
		zap.String("friendId", edge.FriendID))
}

func (s *friendshipService) GetFriend(ctx context.Context, userID, friendID string) (*Friend, error) {
	mine, theirs, err := s.pair(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	friend, err := s.users.FindByID(ctx, friendID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	view := newFriend(mine, theirs, friend)
	return &view, nil
}

func (s *friendshipService) MutualEdges(ctx context.Context, userID string) ([]models.Friendship, error) {
	mine, reverse, err := s.edges(ctx, userID)
	if err != nil {
		return nil, err
	}
	mutual := mine[:0]
	for _, edge := range mine {
		if _, ok := reverse[edge.FriendID]; ok {
			mutual = append(mutual, edge)
		}
	}
	return mutual, nil
}

func (s *friendshipService) UpdatePermissions(ctx context.Context, userID, friendID string, patch permissions.Patch) (permissions.FriendPermissions, error) {
	mine, _, err := s.pair(ctx, userID, friendID)
	if err != nil {
		return permissions.FriendPermissions{}, err
	}

	merged := permissions.Merge(mine.Permissions, patch)
	if err := s.friendships.UpdatePermissions(ctx, mine.ID, merged); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return permissions.FriendPermissions{}, newError(ErrNotFound, "Friend not found")
		}
		return permissions.FriendPermissions{}, fmt.Errorf("update permissions: %w", err)
	}

	s.emitter.EmitToUser(friendID, events.PermissionsUpdated{FriendID: userID, Permissions: merged})
	return merged, nil
}

func (s *friendshipService) Unfriend(ctx context.Context, userID, friendID string) error {
	mine, err := s.friendships.FindBetween(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "Friend not found")
		}
		return err
	}

	// The caller's edge goes first so a partial failure never leaves the
	// friend with access the caller revoked.
	if err := s.friendships.Delete(ctx, mine.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete friendship: %w", err)
	}

	theirs, err := s.friendships.FindBetween(ctx, friendID, userID)
	switch {
	case err == nil:
		if derr := s.friendships.Delete(ctx, theirs.ID); derr != nil && !errors.Is(derr, repository.ErrNotFound) {
			s.logger.Warn("reverse friendship left one-sided",
				zap.String("friendshipId", theirs.ID),
				zap.Error(derr))
		}
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Warn("failed to load reverse friendship", zap.String("friendId", friendID), zap.Error(err))
	}

	s.emitter.EmitToUser(friendID, events.FriendRemoved{ByUserID: userID})
	return nil
}

func (s *friendshipService) Reconcile(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-oneSidedGrace)
	removed := 0
	for {
		edges, err := s.friendships.FindOneSided(ctx, cutoff, reconcileBatch)
		if err != nil {
			return removed, fmt.Errorf("find one-sided friendships: %w", err)
		}
		deleted := 0
		for _, edge := range edges {
			if err := s.friendships.Delete(ctx, edge.ID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return removed, fmt.Errorf("delete one-sided friendship %s: %w", edge.ID, err)
			}
			deleted++
		}
		removed += deleted
		if len(edges) < reconcileBatch || deleted == 0 {
			return removed, nil
		}
	}
}
