package repository

import (
	"context"

	"sagetracker/backend/internal/models"

	"gorm.io/gorm"
)

type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	FindByID(ctx context.Context, id string) (*models.FriendRequest, error)
	FindPendingForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error)
	FindPendingBySender(ctx context.Context, senderID string) ([]models.FriendRequest, error)
	FindPendingBetween(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.FriendRequestStatus) error
	Delete(ctx context.Context, id string) error
}

type friendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

func (r *friendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	return translate(r.db.WithContext(ctx).Create(request).Error)
}

func (r *friendRequestRepository) FindByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (r *friendRequestRepository) FindPendingForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *friendRequestRepository) FindPendingBySender(ctx context.Context, senderID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", senderID, models.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *friendRequestRepository) FindPendingBetween(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.StatusPending).
		First(&request).Error
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (r *friendRequestRepository) UpdateStatus(ctx context.Context, id string, status models.FriendRequestStatus) error {
	result := r.db.WithContext(ctx).Model(&models.FriendRequest{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *friendRequestRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.FriendRequest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
