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

func TestLocationRepository_NewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLocationRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Location{
			UserID:    a.ID,
			Latitude:  float64(i),
			Longitude: float64(i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := repo.FindByUser(ctx, a.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4.0, history[0].Latitude)
	assert.Equal(t, 2.0, history[2].Latitude)

	latest, err := repo.FindLatest(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, latest.Latitude)

	inRange, err := repo.FindByUserInRange(ctx, a.ID, base.Add(time.Minute), base.Add(3*time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, inRange, 3)

	inRange, err = repo.FindByUserInRange(ctx, a.ID, base.Add(time.Minute), base.Add(3*time.Minute), 2)
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.Equal(t, 3.0, inRange[0].Latitude)

	_, err = repo.FindLatest(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
