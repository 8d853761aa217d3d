package service

import (
	"context"
	"errors"
	"fmt"

	"sagetracker/backend/internal/events"
	"sagetracker/backend/internal/hub"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/repository"

	"go.uber.org/zap"
)

type FriendRequestService interface {
	Send(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	List(ctx context.Context, userID string) (*FriendRequests, error)
	// Accept returns the accepter's new edge.
	Accept(ctx context.Context, receiverID, requestID string) (*models.Friendship, error)
	Decline(ctx context.Context, receiverID, requestID string) error
	Cancel(ctx context.Context, senderID, requestID string) error
}

type friendRequestService struct {
	requests      repository.FriendRequestRepository
	users         repository.UserRepository
	friendships   FriendshipService
	notifications NotificationService
	emitter       hub.Emitter
	logger        *zap.Logger
}

func NewFriendRequestService(
	requests repository.FriendRequestRepository,
	users repository.UserRepository,
	friendships FriendshipService,
	notifications NotificationService,
	emitter hub.Emitter,
	logger *zap.Logger,
) FriendRequestService {
	return &friendRequestService{
		requests:      requests,
		users:         users,
		friendships:   friendships,
		notifications: notifications,
		emitter:       emitter,
		logger:        logger.With(zap.String("component", "friend_request_service")),
	}
}

func (s *friendRequestService) Send(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	if receiverID == "" {
		return nil, newError(ErrInvalidInput, "Receiver ID is required")
	}
	if receiverID == senderID {
		return nil, newError(ErrInvalidInput, "Cannot send friend request to yourself")
	}

	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("find receiver: %w", err)
	}

	friends, err := s.friendships.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if friends {
		return nil, newError(ErrInvalidInput, "Already friends with this user")
	}

	if err := s.ensureNoPending(ctx, senderID, receiverID, "Friend request already sent"); err != nil {
		return nil, err
	}
	if err := s.ensureNoPending(ctx, receiverID, senderID, "This user has already sent you a friend request"); err != nil {
		return nil, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find sender: %w", err)
	}

	request := &models.FriendRequest{SenderID: senderID, ReceiverID: receiverID, Status: models.StatusPending}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	requestID := request.ID
	if _, err := s.notifications.Notify(ctx, receiverID, models.NotificationFriendRequestReceived, models.NotificationData{
		FromUserID:   senderID,
		FromUsername: sender.DisplayName(),
		RequestID:    &requestID,
	}); err != nil {
		// The request stands; the receiver still sees it in their list.
		s.logger.Warn("failed to notify friend request", zap.String("requestId", request.ID), zap.Error(err))
	}

	return request, nil
}

func (s *friendRequestService) ensureNoPending(ctx context.Context, senderID, receiverID, message string) error {
	_, err := s.requests.FindPendingBetween(ctx, senderID, receiverID)
	switch {
	case err == nil:
		return newError(ErrInvalidInput, message)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find pending request: %w", err)
	}
}

func (s *friendRequestService) List(ctx context.Context, userID string) (*FriendRequests, error) {
	received, err := s.requests.FindPendingForReceiver(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	sent, err := s.requests.FindPendingBySender(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}

	ids := make([]string, 0, len(received)+len(sent))
	for _, r := range received {
		ids = append(ids, r.SenderID)
	}
	for _, r := range sent {
		ids = append(ids, r.ReceiverID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load request users: %w", err)
	}

	result := &FriendRequests{
		Received: make([]FriendRequest, 0, len(received)),
		Sent:     make([]FriendRequest, 0, len(sent)),
	}
	for i := range received {
		view := newFriendRequest(&received[i])
		if u, ok := users[received[i].SenderID]; ok {
			p := newPublicUser(u)
			view.Sender = &p
		}
		result.Received = append(result.Received, view)
	}
	for i := range sent {
		view := newFriendRequest(&sent[i])
		if u, ok := users[sent[i].ReceiverID]; ok {
			p := newPublicUser(u)
			view.Receiver = &p
		}
		result.Sent = append(result.Sent, view)
	}
	return result, nil
}

// pendingFor loads a request and checks it is pending and addressed to
// (or sent by) actorID.
func (s *friendRequestService) pendingFor(ctx context.Context, requestID string, owns func(*models.FriendRequest) bool, forbidden, notPending string) (*models.FriendRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Friend request not found")
		}
		return nil, fmt.Errorf("find friend request: %w", err)
	}
	if !owns(request) {
		return nil, newError(ErrForbidden, forbidden)
	}
	if request.Status != models.StatusPending {
		return nil, newError(ErrInvalidInput, notPending)
	}
	return request, nil
}

func (s *friendRequestService) Accept(ctx context.Context, receiverID, requestID string) (*models.Friendship, error) {
	request, err := s.pendingFor(ctx, requestID,
		func(r *models.FriendRequest) bool { return r.ReceiverID == receiverID },
		"Can only accept requests sent to you",
		"Request is no longer pending")
	if err != nil {
		return nil, err
	}

	// Edges first: if this fails the request stays pending and can be retried.
	mine, theirs, err := s.friendships.Create(ctx, receiverID, request.SenderID)
	if err != nil {
		return nil, fmt.Errorf("accept friend request: %w", err)
	}
	if err := s.requests.UpdateStatus(ctx, request.ID, models.StatusAccepted); err != nil {
		return nil, fmt.Errorf("mark request accepted: %w", err)
	}

	accepter, err := s.users.FindByID(ctx, receiverID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to load accepter", zap.String("userId", receiverID), zap.Error(err))
	}
	friendshipID := theirs.ID
	if _, err := s.notifications.Notify(ctx, request.SenderID, models.NotificationFriendRequestAccepted, models.NotificationData{
		FromUserID:   receiverID,
		FromUsername: accepter.DisplayName(),
		FriendshipID: &friendshipID,
	}); err != nil {
		s.logger.Warn("failed to notify accepted request", zap.String("requestId", request.ID), zap.Error(err))
	}

	s.emitter.EmitToUser(request.SenderID, events.FriendAdded{FriendshipID: theirs.ID, FriendID: receiverID})
	s.emitter.EmitToUser(receiverID, events.FriendAdded{FriendshipID: mine.ID, FriendID: request.SenderID})
	return mine, nil
}

func (s *friendRequestService) Decline(ctx context.Context, receiverID, requestID string) error {
	request, err := s.pendingFor(ctx, requestID,
		func(r *models.FriendRequest) bool { return r.ReceiverID == receiverID },
		"Can only decline requests sent to you",
		"Request is no longer pending")
	if err != nil {
		return err
	}

	if err := s.requests.UpdateStatus(ctx, request.ID, models.StatusDeclined); err != nil {
		return fmt.Errorf("decline friend request: %w", err)
	}
	s.emitter.EmitToUser(request.SenderID, events.FriendRequestDeclined{RequestID: request.ID, ByUserID: receiverID})
	return nil
}

func (s *friendRequestService) Cancel(ctx context.Context, senderID, requestID string) error {
	request, err := s.pendingFor(ctx, requestID,
		func(r *models.FriendRequest) bool { return r.SenderID == senderID },
		"Can only cancel your own requests",
		"Can only cancel pending requests")
	if err != nil {
		return err
	}

	if err := s.requests.Delete(ctx, request.ID); err != nil {
		return fmt.Errorf("cancel friend request: %w", err)
	}
	s.emitter.EmitToUser(request.ReceiverID, events.FriendRequestCancelled{RequestID: request.ID, ByUserID: senderID})
	return nil
}
