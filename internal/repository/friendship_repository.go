package repository

import (
	"context"
	"time"

	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/permissions"

	"gorm.io/gorm"
)

// FriendshipRepository stores directed friendship edges one row at a time.
// Nothing here spans two rows atomically.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	FindByID(ctx context.Context, id string) (*models.Friendship, error)
	FindBetween(ctx context.Context, userID, friendID string) (*models.Friendship, error)
	// FindByUser returns the edges userID owns (what userID shares with others).
	FindByUser(ctx context.Context, userID string) ([]models.Friendship, error)
	// FindByFriend returns the edges pointing at friendID (what others share with friendID).
	FindByFriend(ctx context.Context, friendID string) ([]models.Friendship, error)
	UpdatePermissions(ctx context.Context, id string, perms permissions.FriendPermissions) error
	Delete(ctx context.Context, id string) error
	// FindOneSided returns edges created before cutoff whose reverse edge is missing.
	FindOneSided(ctx context.Context, cutoff time.Time, limit int) ([]models.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	return translate(r.db.WithContext(ctx).Create(friendship).Error)
}

func (r *friendshipRepository) FindByID(ctx context.Context, id string) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).First(&friendship, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &friendship, nil
}

func (r *friendshipRepository) FindBetween(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.WithContext(ctx).First(&friendship, "user_id = ? AND friend_id = ?", userID, friendID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &friendship, nil
}

func (r *friendshipRepository) FindByUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&friendships).Error
	return friendships, err
}

func (r *friendshipRepository) FindByFriend(ctx context.Context, friendID string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).Where("friend_id = ?", friendID).Find(&friendships).Error
	return friendships, err
}

func (r *friendshipRepository) UpdatePermissions(ctx context.Context, id string, perms permissions.FriendPermissions) error {
	result := r.db.WithContext(ctx).Model(&models.Friendship{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"see_location":     perms.SeeLocation,
			"see_activity":     perms.SeeActivity,
			"see_full_profile": perms.SeeFullProfile,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *friendshipRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Friendship{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *friendshipRepository) FindOneSided(ctx context.Context, cutoff time.Time, limit int) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Table("friendships AS f").
		Select("f.*").
		Joins("LEFT JOIN friendships AS r ON r.user_id = f.friend_id AND r.friend_id = f.user_id").
		Where("r.id IS NULL AND f.created_at < ?", cutoff).
		Limit(limit).
		Find(&friendships).Error
	return friendships, err
}
