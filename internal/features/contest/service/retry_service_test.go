package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "contest-engine-backend/internal/common/errors"
	"contest-engine-backend/internal/features/contest/models"
)

func seedDelivery(t *testing.T, store *fakeStore, id string, userID int64, status models.DeliveryStatus) {
	t.Helper()
	require.NoError(t, store.CreateDeliveryLog(context.Background(), &models.DeliveryLog{
		ID:          id,
		ContestID:   "contest-1",
		CycleID:     "cycle-1",
		UserID:      userID,
		PromoCode:   "AAA",
		MessageText: "Your code: AAA",
		Status:      status,
	}))
}

func TestRetryResendsStoredMessageVerbatim(t *testing.T) {
	store := newFakeStore()
	social := newFakeSocial()
	svc := NewRetryService(store, social)
	svc.now = fixedTime

	seedDelivery(t, store, "log-1", 1, models.DeliveryStatusError)

	entry, err := svc.Retry(context.Background(), "log-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusSent, entry.Status)
	require.NotNil(t, entry.AttemptedAt)
	assert.Equal(t, fixedTime(), *entry.AttemptedAt)

	require.Len(t, social.sentDMs[1], 1)
	assert.Equal(t, "Your code: AAA", social.sentDMs[1][0])

	stored, err := store.GetDeliveryLogByID(context.Background(), "log-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusSent, stored.Status)
	assert.Empty(t, stored.ErrorDetails)
}

func TestRetryRecordsRepeatedFailure(t *testing.T) {
	store := newFakeStore()
	social := newFakeSocial()
	svc := NewRetryService(store, social)

	seedDelivery(t, store, "log-1", 1, models.DeliveryStatusError)
	social.dmErrFor[1] = assert.AnError

	entry, err := svc.Retry(context.Background(), "log-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusError, entry.Status)
	assert.NotEmpty(t, entry.ErrorDetails)
}

func TestRetryUnknownLogIsNotFound(t *testing.T) {
	svc := NewRetryService(newFakeStore(), newFakeSocial())

	_, err := svc.Retry(context.Background(), "missing")
	require.Error(t, err)
	appErr, ok := errs.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestRetryAllAttemptsAreIndependent(t *testing.T) {
	store := newFakeStore()
	social := newFakeSocial()
	svc := NewRetryService(store, social)

	seedDelivery(t, store, "log-1", 1, models.DeliveryStatusError)
	seedDelivery(t, store, "log-2", 2, models.DeliveryStatusError)
	seedDelivery(t, store, "log-3", 3, models.DeliveryStatusError)
	seedDelivery(t, store, "log-4", 4, models.DeliveryStatusSent) // not retried
	social.dmErrFor[2] = assert.AnError

	sent, err := svc.RetryAll(context.Background(), "contest-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	failed, err := store.ListFailedByContest(context.Background(), "contest-1")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "log-2", failed[0].ID)

	// The already-sent entry is left alone.
	assert.Empty(t, social.sentDMs[4])
}
