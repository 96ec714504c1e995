// Package recurrence holds the pure timestamp arithmetic behind reminder
// scheduling. Nothing here reads the wall clock; callers pass now.
package recurrence

import (
	"time"

	"github.com/nhle/medreminder/internal/model"
)

// NextOccurrence returns the occurrence following dueAt for the given
// policy. It reports false for RepeatOnce, which must not be advanced.
//
// The result is always exactly one step after dueAt, however stale dueAt
// is: a missed reminder advances one cycle per acknowledgment rather than
// catching up to the present.
func NextOccurrence(dueAt time.Time, repeat model.Repeat, intervalDays int) (time.Time, bool) {
	switch repeat {
	case model.RepeatDaily:
		return dueAt.AddDate(0, 0, 1), true
	case model.RepeatWeekly:
		return dueAt.AddDate(0, 0, 7), true
	case model.RepeatCustom:
		if intervalDays < 1 {
			intervalDays = 1
		}
		return dueAt.AddDate(0, 0, intervalDays), true
	default:
		return dueAt, false
	}
}

// InitialSchedule places hour:minute on today's date. If that moment is
// not strictly after now, it rolls forward one day.
func InitialSchedule(hour, minute int, now time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Classify reports the display status of r at now.
func Classify(r model.Reminder, now time.Time) model.Status {
	switch {
	case r.Taken:
		return model.StatusTaken
	case r.DueAt.Before(now):
		return model.StatusOverdue
	case sameDay(r.DueAt, now) && r.DueAt.Hour() <= now.Hour()+1:
		return model.StatusDueSoon
	default:
		return model.StatusScheduled
	}
}

// IsDue reports whether the poll loop should notify r at now: the
// reminder is enabled, not yet notified or taken, and its due time is
// at or before now truncated to the minute.
func IsDue(r model.Reminder, now time.Time) bool {
	if !r.Enabled || r.Notified || r.Taken {
		return false
	}
	return !r.DueAt.After(now.Truncate(time.Minute))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
