// Package reminder implements the user-facing reminder operations on top
// of a store.Store: validation, duplicate detection, scheduling, snooze
// and acknowledgment.
package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/recurrence"
	"github.com/nhle/medreminder/internal/store"
)

// Service applies reminder operations to a store.
type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service backed by st.
func NewService(st store.Store, log *zap.SugaredLogger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Service{store: st, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Create validates in, rejects duplicates, and stores a new enabled
// reminder scheduled at the next occurrence of in.Time.
func (s *Service) Create(ctx context.Context, in Input) (model.Reminder, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return model.Reminder{}, err
	}
	hour, minute, err := in.clock()
	if err != nil {
		return model.Reminder{}, err
	}

	r := model.Reminder{
		Name:         in.Name,
		Dosage:       in.Dosage,
		DueAt:        recurrence.InitialSchedule(hour, minute, s.now()),
		Repeat:       in.Repeat,
		IntervalDays: in.IntervalDays,
		Enabled:      true,
	}

	if err := s.checkDuplicate(ctx, r); err != nil {
		return model.Reminder{}, err
	}

	id, err := s.store.Create(ctx, r)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("adding reminder: %w", err)
	}
	r.ID = id

	s.log.Infow("reminder created", "id", id, "name", r.Name, "due_at", model.FormatDue(r.DueAt))
	return r, nil
}

// Edit replaces the user-editable fields of reminder id. The due time is
// rescheduled from in.Time and the notified/taken flags are cleared;
// the enabled flag is kept. Uniqueness is only enforced by Create.
func (s *Service) Edit(ctx context.Context, id string, in Input) (model.Reminder, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return model.Reminder{}, err
	}
	hour, minute, err := in.clock()
	if err != nil {
		return model.Reminder{}, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("loading reminder: %w", err)
	}

	r := *current
	r.Name = in.Name
	r.Dosage = in.Dosage
	r.DueAt = recurrence.InitialSchedule(hour, minute, s.now())
	r.Repeat = in.Repeat
	r.IntervalDays = in.IntervalDays
	r.Notified = false
	r.Taken = false

	err = s.store.Update(ctx, id, store.Fields{
		Name:         &r.Name,
		Dosage:       &r.Dosage,
		DueAt:        &r.DueAt,
		Repeat:       &r.Repeat,
		IntervalDays: &r.IntervalDays,
		Notified:     &r.Notified,
		Taken:        &r.Taken,
	})
	if err != nil {
		return model.Reminder{}, fmt.Errorf("updating reminder: %w", err)
	}

	s.log.Infow("reminder edited", "id", id, "due_at", model.FormatDue(r.DueAt))
	return r, nil
}

// Delete removes reminder id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting reminder: %w", err)
	}
	s.log.Infow("reminder deleted", "id", id)
	return nil
}

// Snooze pushes the stored due time forward by minutes and clears the
// notified flag.
func (s *Service) Snooze(ctx context.Context, id string, minutes int) (model.Reminder, error) {
	if err := ValidateSnooze(minutes); err != nil {
		return model.Reminder{}, err
	}

	r, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("loading reminder: %w", err)
	}

	r.DueAt = r.DueAt.Add(time.Duration(minutes) * time.Minute)
	r.Notified = false

	err = s.store.Update(ctx, id, store.Fields{DueAt: &r.DueAt, Notified: &r.Notified})
	if err != nil {
		return model.Reminder{}, fmt.Errorf("snoozing reminder: %w", err)
	}

	s.log.Infow("reminder snoozed", "id", id, "minutes", minutes, "due_at", model.FormatDue(r.DueAt))
	return *r, nil
}

// MarkTaken acknowledges the current dose. A one-off reminder is flagged
// taken; a repeating one advances one occurrence with both flags cleared.
func (s *Service) MarkTaken(ctx context.Context, id string) (model.Reminder, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("loading reminder: %w", err)
	}

	f := store.Fields{}
	if next, ok := recurrence.NextOccurrence(r.DueAt, r.Repeat, r.IntervalDays); ok {
		r.DueAt = next
		r.Notified = false
		r.Taken = false
		f.DueAt = &r.DueAt
		f.Notified = &r.Notified
	} else {
		r.Taken = true
	}
	f.Taken = &r.Taken

	if err := s.store.Update(ctx, id, f); err != nil {
		return model.Reminder{}, fmt.Errorf("marking reminder taken: %w", err)
	}

	s.log.Infow("reminder taken", "id", id, "repeat", r.Repeat, "due_at", model.FormatDue(r.DueAt))
	return *r, nil
}

// ToggleEnabled flips the enabled flag of reminder id.
func (s *Service) ToggleEnabled(ctx context.Context, id string) (model.Reminder, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("loading reminder: %w", err)
	}

	r.Enabled = !r.Enabled
	if err := s.store.Update(ctx, id, store.Fields{Enabled: &r.Enabled}); err != nil {
		return model.Reminder{}, fmt.Errorf("toggling reminder: %w", err)
	}
	return *r, nil
}

// List returns every reminder ordered by due time.
func (s *Service) List(ctx context.Context) ([]model.Reminder, error) {
	reminders, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	return reminders, nil
}

// Get returns reminder id.
func (s *Service) Get(ctx context.Context, id string) (*model.Reminder, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading reminder: %w", err)
	}
	return r, nil
}

// checkDuplicate rejects r if a stored reminder has the same lowercase
// name and time of day.
func (s *Service) checkDuplicate(ctx context.Context, r model.Reminder) error {
	existing, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("checking duplicates: %w", err)
	}

	name := strings.ToLower(r.Name)
	clock := r.Clock()
	for _, e := range existing {
		if strings.ToLower(e.Name) == name && e.Clock() == clock {
			return ErrDuplicate
		}
	}
	return nil
}
