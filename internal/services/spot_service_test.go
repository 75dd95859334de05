package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotService_AdminOnlyWrites(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(true)
	ss := NewSpotService(store, nil, discardLogger)
	admin := adminActor()

	draft := func() *models.TouristSpot {
		return &models.TouristSpot{Name: " Kakum  Park", Location: "Abrafo", Region: "Central", AvgRating: 4.9, ReviewCount: 12}
	}

	_, err := ss.CreateSpot(ctx, guideActor(), draft())
	assert.Equal(t, models.ErrCodeForbidden, models.ErrorCodeOf(err))
	_, err = ss.CreateSpot(ctx, models.Actor{}, draft())
	assert.Equal(t, models.ErrCodeUnauthorized, models.ErrorCodeOf(err))

	spot, err := ss.CreateSpot(ctx, admin, draft())
	require.NoError(t, err)
	assert.Equal(t, "Kakum Park", spot.Name)
	assert.Zero(t, spot.AvgRating, "aggregates are not client settable")
	assert.Zero(t, spot.ReviewCount)

	name := "Kakum National Park"
	_, err = ss.UpdateSpot(ctx, userActor(), spot.ID, models.SpotUpdate{Name: &name})
	assert.Equal(t, models.ErrCodeForbidden, models.ErrorCodeOf(err))

	updated, err := ss.UpdateSpot(ctx, admin, spot.ID, models.SpotUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = ss.UpdateSpot(ctx, admin, spot.ID, models.SpotUpdate{})
	assert.Equal(t, models.ErrCodeInvalid, models.ErrorCodeOf(err))

	require.NoError(t, ss.DeleteSpot(ctx, admin, spot.ID))
	_, err = ss.GetSpot(ctx, spot.ID)
	assert.Equal(t, models.ErrCodeNotFound, models.ErrorCodeOf(err))
}

func TestSpotService_ListSpotsByRegion(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(true)
	ss := NewSpotService(store, nil, discardLogger)
	store.seedSpot(uuid.New())
	store.seedSpot(uuid.New())

	spots, total, err := ss.ListSpots(ctx, " Central ", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, spots, 2)

	_, total, err = ss.ListSpots(ctx, "Volta", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, _, err = ss.ListSpots(ctx, "", 0, 0)
	assert.Equal(t, models.ErrCodeInvalid, models.ErrorCodeOf(err))
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(true)
	ns := NewNotificationService(store)
	user := userActor()

	for _, title := range []string{"first", "second"} {
		require.NoError(t, store.CreateNotification(ctx, &models.Notification{UserID: user.ID, Kind: models.NotifyNewReview, Title: title}))
	}
	require.NoError(t, store.CreateNotification(ctx, &models.Notification{UserID: uuid.New(), Title: "someone else"}))

	list, total, err := ns.ListNotifications(ctx, user, true, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.NoError(t, ns.MarkRead(ctx, user, list[0].ID))
	err = ns.MarkRead(ctx, userActor(), list[1].ID)
	assert.Equal(t, models.ErrCodeNotFound, models.ErrorCodeOf(err))

	_, total, err = ns.ListNotifications(ctx, user, true, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, _, err = ns.ListNotifications(ctx, models.Actor{}, false, 0, 10)
	assert.Equal(t, models.ErrCodeUnauthorized, models.ErrorCodeOf(err))
}
