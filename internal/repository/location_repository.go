package repository

import (
	"context"
	"time"

	"sagetracker/backend/internal/models"

	"gorm.io/gorm"
)

// LocationRepository appends and reads location samples, newest first.
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	FindByUser(ctx context.Context, userID string, limit int) ([]models.Location, error)
	FindByUserInRange(ctx context.Context, userID string, start, end time.Time, limit int) ([]models.Location, error)
	FindLatest(ctx context.Context, userID string) (*models.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *locationRepository) FindByUser(ctx context.Context, userID string, limit int) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&locations).Error
	return locations, err
}

func (r *locationRepository) FindByUserInRange(ctx context.Context, userID string, start, end time.Time, limit int) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND timestamp BETWEEN ? AND ?", userID, start, end).
		Order("timestamp DESC").
		Limit(limit).
		Find(&locations).Error
	return locations, err
}

func (r *locationRepository) FindLatest(ctx context.Context, userID string) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").First(&location).Error
	if err != nil {
		return nil, translate(err)
	}
	return &location, nil
}
