package repository

import (
	"context"
	"testing"

	"sagetracker/backend/internal/models"
	"sagetracker/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRequestRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFriendRequestRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")

	req := &models.FriendRequest{SenderID: a.ID, ReceiverID: b.ID, Status: models.StatusPending}
	require.NoError(t, repo.Create(ctx, req))

	received, err := repo.FindPendingForReceiver(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)

	sent, err := repo.FindPendingBySender(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)

	found, err := repo.FindPendingBetween(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, found.ID)

	_, err = repo.FindPendingBetween(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.UpdateStatus(ctx, req.ID, models.StatusDeclined))
	received, err = repo.FindPendingForReceiver(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, received)

	require.NoError(t, repo.Delete(ctx, req.ID))
	_, err = repo.FindByID(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, req.ID, models.StatusAccepted), ErrNotFound)
}
