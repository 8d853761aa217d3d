package service

import (
	"context"
	"errors"
	"fmt"

	"sagetracker/backend/internal/cache"
	"sagetracker/backend/internal/events"
	"sagetracker/backend/internal/hub"
	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 100
)

// NotificationService persists notifications and pushes them to live
// connections. A notification is stored before any push, so offline users
// find it on their next fetch.
type NotificationService interface {
	Notify(ctx context.Context, userID string, kind models.NotificationType, data models.NotificationData) (*models.Notification, error)
	// List returns one page (1-based) of notifications, newest first, and the total.
	List(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
	unread        cache.UnreadCounter
	emitter       hub.Emitter
	logger        *zap.Logger
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	unread cache.UnreadCounter,
	emitter hub.Emitter,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		unread:        unread,
		emitter:       emitter,
		logger:        logger.With(zap.String("component", "notification_service")),
	}
}

func (s *notificationService) Notify(ctx context.Context, userID string, kind models.NotificationType, data models.NotificationData) (*models.Notification, error) {
	notification := &models.Notification{UserID: userID, Type: kind, Data: data}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	s.unread.Invalidate(ctx, userID)

	s.emitter.EmitToUser(userID, events.Notification{Notification: *notification})
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID string, page, limit int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	notifications, total, err := s.notifications.FindByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	if err := s.notifications.MarkAsRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "Notification not found")
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	s.unread.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	updated, err := s.notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	s.unread.Invalidate(ctx, userID)
	s.logger.Debug("marked notifications read", zap.String("userId", userID), zap.Int64("count", updated))
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if count, ok := s.unread.Get(ctx, userID); ok {
		return count, nil
	}
	version, cacheable := s.unread.Version(ctx, userID)
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	if cacheable {
		s.unread.Set(ctx, userID, count, version)
	}
	return count, nil
}
