package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Clock is a settable time source for code that takes a now func.
type Clock struct {
	T time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// MustTime parses a "2006-01-02 15:04" local timestamp or fails the test.
func MustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := model.ParseDue(s)
	if err != nil {
		t.Fatalf("parsing time %q: %v", s, err)
	}
	return ts
}

// Seed inserts r directly into s and returns it with its assigned ID.
func Seed(t *testing.T, s store.Store, r model.Reminder) model.Reminder {
	t.Helper()
	id, err := s.Create(context.Background(), r)
	if err != nil {
		t.Fatalf("seeding reminder %q: %v", r.Name, err)
	}
	r.ID = id
	return r
}
