package repository

import (
	"context"

	"sagetracker/backend/internal/models"

	"gorm.io/gorm"
)

type LoginLogRepository interface {
	Create(ctx context.Context, log *models.LoginLog) error
	// FindByUser returns userID's most recent attempts, newest first.
	FindByUser(ctx context.Context, userID string, limit int) ([]models.LoginLog, error)
}

type loginLogRepository struct {
	db *gorm.DB
}

func NewLoginLogRepository(db *gorm.DB) LoginLogRepository {
	return &loginLogRepository{db: db}
}

func (r *loginLogRepository) Create(ctx context.Context, log *models.LoginLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *loginLogRepository) FindByUser(ctx context.Context, userID string, limit int) ([]models.LoginLog, error) {
	var logs []models.LoginLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
