package repository

import (
	"context"
	"testing"
	"time"

	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogRepository_FindByUserNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLoginLogRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	base := time.Now().Add(-time.Hour)
	for i, success := range []bool{false, false, true} {
		require.NoError(t, repo.Create(ctx, &models.LoginLog{
			UserID:    a.ID,
			Email:     "alice@example.com",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Success:   success,
			IPAddress: "10.0.0.1",
			UserAgent: "curl/8.0",
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.LoginLog{
		UserID: models.UnknownUserID, Email: "nobody@example.com", Timestamp: base,
	}))

	logs, err := repo.FindByUser(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].Success)
	assert.True(t, logs[0].Timestamp.After(logs[1].Timestamp))
	assert.True(t, logs[1].Timestamp.After(logs[2].Timestamp))
	assert.NotEmpty(t, logs[0].ID)

	logs, err = repo.FindByUser(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	unknown, err := repo.FindByUser(ctx, models.UnknownUserID, 10)
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "nobody@example.com", unknown[0].Email)
}
