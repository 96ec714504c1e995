package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/store"
	"github.com/nhle/medreminder/internal/testutil"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	due := testutil.MustTime(t, "2024-01-01 08:00")
	id, err := s.Create(ctx, model.Reminder{
		ID:           "ignored",
		Name:         "Aspirin",
		Dosage:       "100mg",
		DueAt:        due,
		Repeat:       model.RepeatCustom,
		IntervalDays: 3,
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Reminder{
		ID:           id,
		Name:         "Aspirin",
		Dosage:       "100mg",
		DueAt:        due,
		Repeat:       model.RepeatCustom,
		IntervalDays: 3,
		Enabled:      true,
	}, *got)
}

func TestSQLiteStoreListOrdersByDue(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	testutil.Seed(t, s, model.Reminder{Name: "Late", Dosage: "1", DueAt: testutil.MustTime(t, "2024-01-02 08:00"), Repeat: model.RepeatOnce})
	testutil.Seed(t, s, model.Reminder{Name: "Early", Dosage: "1", DueAt: testutil.MustTime(t, "2024-01-01 21:00"), Repeat: model.RepeatOnce})

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Early", list[0].Name)
	assert.Equal(t, "Late", list[1].Name)
}

func TestSQLiteStoreUpdatePartial(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	r := testutil.Seed(t, s, model.Reminder{
		Name:    "Metformin",
		Dosage:  "500mg",
		DueAt:   testutil.MustTime(t, "2024-01-01 08:00"),
		Repeat:  model.RepeatDaily,
		Enabled: true,
	})

	next := testutil.MustTime(t, "2024-01-02 08:00")
	err := s.Update(ctx, r.ID, store.Fields{
		DueAt:    &next,
		Notified: store.Ptr(false),
		Taken:    store.Ptr(true),
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, next, got.DueAt)
	assert.True(t, got.Taken)
	assert.False(t, got.Notified)
	assert.Equal(t, "Metformin", got.Name)
	assert.Equal(t, "500mg", got.Dosage)
	assert.True(t, got.Enabled)
}

func TestSQLiteStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.Update(ctx, "missing", store.Fields{Name: store.Ptr("x")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	r := testutil.Seed(t, s, model.Reminder{Name: "Vitamin D", Dosage: "1", DueAt: testutil.MustTime(t, "2024-01-01 08:00"), Repeat: model.RepeatOnce})
	require.NoError(t, s.Delete(ctx, r.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteStoreMarkNotifiedIsConditional(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	due := testutil.MustTime(t, "2024-01-01 08:00")
	r := testutil.Seed(t, s, model.Reminder{Name: "Aspirin", Dosage: "1", DueAt: due, Repeat: model.RepeatOnce, Enabled: true})

	// A snooze moved the due time after the scan read the row.
	snoozed := testutil.MustTime(t, "2024-01-01 08:10")
	require.NoError(t, s.Update(ctx, r.ID, store.Fields{DueAt: &snoozed}))

	changed, err := s.MarkNotified(ctx, r.ID, due)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, got.Notified)

	changed, err = s.MarkNotified(ctx, r.ID, snoozed)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.MarkNotified(ctx, r.ID, snoozed)
	require.NoError(t, err)
	assert.False(t, changed, "already notified")
}

func TestSQLiteStoreMarkNotifiedSkipsTakenAndDisabled(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	due := testutil.MustTime(t, "2024-01-01 08:00")
	taken := testutil.Seed(t, s, model.Reminder{Name: "Aspirin", Dosage: "1", DueAt: due, Repeat: model.RepeatOnce, Enabled: true})
	paused := testutil.Seed(t, s, model.Reminder{Name: "Zinc", Dosage: "1", DueAt: due, Repeat: model.RepeatDaily, Enabled: true})

	// Both changed after the scan listed them as due.
	require.NoError(t, s.Update(ctx, taken.ID, store.Fields{Taken: store.Ptr(true)}))
	require.NoError(t, s.Update(ctx, paused.ID, store.Fields{Enabled: store.Ptr(false)}))

	for _, id := range []string{taken.ID, paused.ID} {
		changed, err := s.MarkNotified(ctx, id, due)
		require.NoError(t, err)
		assert.False(t, changed)

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Notified)
	}
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reminders.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	r := testutil.Seed(t, s, model.Reminder{Name: "Aspirin", Dosage: "1", DueAt: testutil.MustTime(t, "2024-01-01 08:00"), Repeat: model.RepeatWeekly})
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RepeatWeekly, got.Repeat)
}
