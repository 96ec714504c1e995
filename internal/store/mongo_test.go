package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/store"
	"github.com/nhle/medreminder/internal/testutil"
)

// newTestMongoStore connects to MEDREMINDER_TEST_MONGO_URI, or skips.
func newTestMongoStore(t *testing.T) *store.MongoStore {
	t.Helper()

	uri := os.Getenv("MEDREMINDER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MEDREMINDER_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s, err := store.NewMongoStore(ctx, uri, "medreminder_test", "reminders_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMongoStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestMongoStore(t)

	due := testutil.MustTime(t, "2024-01-01 08:00")
	r := testutil.Seed(t, s, model.Reminder{
		Name:         "Aspirin",
		Dosage:       "100mg",
		DueAt:        due,
		Repeat:       model.RepeatCustom,
		IntervalDays: 2,
		Enabled:      true,
	})

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, *got)

	changed, err := s.MarkNotified(ctx, r.ID, due.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, s.Update(ctx, r.ID, store.Fields{Taken: store.Ptr(true)}))
	changed, err = s.MarkNotified(ctx, r.ID, due)
	require.NoError(t, err)
	assert.False(t, changed, "taken reminders are not claimed")

	require.NoError(t, s.Update(ctx, r.ID, store.Fields{Taken: store.Ptr(false), Enabled: store.Ptr(false)}))
	changed, err = s.MarkNotified(ctx, r.ID, due)
	require.NoError(t, err)
	assert.False(t, changed, "disabled reminders are not claimed")

	require.NoError(t, s.Update(ctx, r.ID, store.Fields{Enabled: store.Ptr(true)}))
	changed, err = s.MarkNotified(ctx, r.ID, due)
	require.NoError(t, err)
	assert.True(t, changed)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Taken)
	assert.True(t, list[0].Notified)

	require.NoError(t, s.Delete(ctx, r.ID))
	_, err = s.Get(ctx, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMongoStoreRejectsMalformedID(t *testing.T) {
	s := newTestMongoStore(t)

	_, err := s.Get(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
