package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/medreminder/internal/model"
)

// ErrNotFound is returned when no reminder matches the given ID.
var ErrNotFound = errors.New("reminder not found")

// Fields is a partial update. Nil fields are left unchanged.
type Fields struct {
	Name         *string
	Dosage       *string
	DueAt        *time.Time
	Repeat       *model.Repeat
	IntervalDays *int
	Notified     *bool
	Taken        *bool
	Enabled      *bool
}

// Empty reports whether f would change nothing.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Dosage == nil && f.DueAt == nil && f.Repeat == nil &&
		f.IntervalDays == nil && f.Notified == nil && f.Taken == nil && f.Enabled == nil
}

// Store defines the persistence interface for reminders. Implementations
// hold no scheduling logic; they only persist what they are given.
type Store interface {
	// Create persists r and returns the assigned ID. Any ID set on r is
	// ignored.
	Create(ctx context.Context, r model.Reminder) (string, error)

	// Update applies f to the reminder. It returns ErrNotFound for an
	// unknown ID.
	Update(ctx context.Context, id string, f Fields) error

	Delete(ctx context.Context, id string) error

	// List returns every reminder ordered by due time.
	List(ctx context.Context) ([]model.Reminder, error)

	Get(ctx context.Context, id string) (*model.Reminder, error)

	// MarkNotified sets notified only if the stored due time still equals
	// dueAt and the reminder is enabled and not taken. It reports whether
	// the row was changed.
	MarkNotified(ctx context.Context, id string, dueAt time.Time) (bool, error)

	Close() error
}

// Ptr returns a pointer to v, for building Fields literals.
func Ptr[T any](v T) *T {
	return &v
}
