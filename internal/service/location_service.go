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
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// SampleRecorder counts ingested location samples.
type SampleRecorder interface {
	RecordLocationSample()
}

type LocationService interface {
	// Ingest stores a sample and pushes it to every friend allowed to see it.
	Ingest(ctx context.Context, userID string, in LocationInput) (*Location, error)
	History(ctx context.Context, userID string, limit int) ([]Location, error)
	// HistoryBetween returns samples with start <= timestamp <= end, newest first.
	HistoryBetween(ctx context.Context, userID string, start, end time.Time, limit int) ([]Location, error)
	// FriendLocations returns the latest sample of every friend sharing
	// their location with userID.
	FriendLocations(ctx context.Context, userID string) ([]FriendLocation, error)
}

type locationService struct {
	locations   repository.LocationRepository
	users       repository.UserRepository
	friendships FriendshipService
	emitter     hub.Emitter
	recorder    SampleRecorder
	logger      *zap.Logger
}

// NewLocationService creates a LocationService. recorder may be nil.
func NewLocationService(
	locations repository.LocationRepository,
	users repository.UserRepository,
	friendships FriendshipService,
	emitter hub.Emitter,
	recorder SampleRecorder,
	logger *zap.Logger,
) LocationService {
	return &locationService{
		locations:   locations,
		users:       users,
		friendships: friendships,
		emitter:     emitter,
		recorder:    recorder,
		logger:      logger.With(zap.String("component", "location_service")),
	}
}

func (s *locationService) Ingest(ctx context.Context, userID string, in LocationInput) (*Location, error) {
	if in.Latitude < -90 || in.Latitude > 90 {
		return nil, newError(ErrInvalidInput, "Latitude must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return nil, newError(ErrInvalidInput, "Longitude must be between -180 and 180")
	}

	sample := &models.Location{
		UserID:    userID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Accuracy:  in.Accuracy,
		Altitude:  in.Altitude,
		Speed:     in.Speed,
		Bearing:   in.Bearing,
		DeviceID:  in.DeviceID,
	}
	if in.Timestamp != nil {
		sample.Timestamp = in.Timestamp.UTC()
	}
	if err := s.locations.Create(ctx, sample); err != nil {
		return nil, fmt.Errorf("save location: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordLocationSample()
	}

	s.fanOut(ctx, userID, sample)

	view := newLocation(sample)
	return &view, nil
}

// fanOut pushes sample to friends whose incoming edge grants location.
// Failures here never fail the ingest.
func (s *locationService) fanOut(ctx context.Context, userID string, sample *models.Location) {
	edges, err := s.friendships.MutualEdges(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load friends for location fan-out", zap.String("userId", userID), zap.Error(err))
		return
	}
	if len(edges) == 0 {
		return
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for location fan-out", zap.String("userId", userID), zap.Error(err))
		return
	}

	event := events.LocationUpdate{
		FriendID:        userID,
		Username:        user.DisplayName(),
		ProfileImageURL: user.ProfileImageURL,
		Location: events.LocationPoint{
			Latitude:  sample.Latitude,
			Longitude: sample.Longitude,
			Accuracy:  sample.Accuracy,
			Timestamp: sample.Timestamp,
		},
	}
	for _, edge := range edges {
		if permissions.CanSee(edge.Permissions, permissions.CapabilityLocation) {
			s.emitter.EmitToUser(edge.FriendID, event)
		}
	}
}

func (s *locationService) History(ctx context.Context, userID string, limit int) ([]Location, error) {
	samples, err := s.locations.FindByUser(ctx, userID, clampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return newLocations(samples), nil
}

func (s *locationService) HistoryBetween(ctx context.Context, userID string, start, end time.Time, limit int) ([]Location, error) {
	if end.Before(start) {
		return nil, newError(ErrInvalidInput, "End time must not be before start time")
	}
	samples, err := s.locations.FindByUserInRange(ctx, userID, start.UTC(), end.UTC(), clampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list locations in range: %w", err)
	}
	return newLocations(samples), nil
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return min(limit, MaxHistoryLimit)
}

func newLocations(samples []models.Location) []Location {
	result := make([]Location, 0, len(samples))
	for i := range samples {
		result = append(result, newLocation(&samples[i]))
	}
	return result
}

func (s *locationService) FriendLocations(ctx context.Context, userID string) ([]FriendLocation, error) {
	friends, err := s.friendships.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	result := make([]FriendLocation, 0, len(friends))
	for _, f := range friends {
		if !permissions.CanSee(f.SharedWithMe, permissions.CapabilityLocation) {
			continue
		}

		entry := FriendLocation{
			FriendID:        f.FriendID,
			Username:        f.Friend.Username,
			ProfileImageURL: f.Friend.ProfileImageURL,
		}
		latest, err := s.locations.FindLatest(ctx, f.FriendID)
		switch {
		case err == nil:
			view := newLocation(latest)
			entry.Location = &view
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("latest location: %w", err)
		}
		result = append(result, entry)
	}
	return result, nil
}
