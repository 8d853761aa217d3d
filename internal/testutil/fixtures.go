package testutil

import (
	"testing"

	"sagetracker/backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateUser inserts a user with the given username and returns it.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	name := username
	user := &models.User{
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Username:     &name,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
