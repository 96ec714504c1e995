package model

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the persisted form of a reminder's due timestamp:
// minute resolution, no zone, implicitly local time.
const TimeLayout = "2006-01-02 15:04"

// ClockLayout is the hour:minute portion of TimeLayout.
const ClockLayout = "15:04"

// Repeat is the recurrence policy of a reminder.
type Repeat string

const (
	RepeatOnce   Repeat = "Once"
	RepeatDaily  Repeat = "Daily"
	RepeatWeekly Repeat = "Weekly"
	RepeatCustom Repeat = "Custom"
)

// Repeats lists every repeat policy in display order.
var Repeats = []Repeat{RepeatOnce, RepeatDaily, RepeatWeekly, RepeatCustom}

// ParseRepeat matches s case-insensitively against the known policies.
func ParseRepeat(s string) (Repeat, error) {
	for _, r := range Repeats {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown repeat policy %q", s)
}

// Status is the presentation-facing state of a reminder relative to now.
type Status string

const (
	StatusTaken     Status = "taken"
	StatusOverdue   Status = "overdue"
	StatusDueSoon   Status = "soon"
	StatusScheduled Status = "scheduled"
)

// Reminder is a scheduled medicine-dose notification record.
type Reminder struct {
	// ID is assigned by the store.
	ID string `json:"id"`

	Name   string `json:"name"`
	Dosage string `json:"dosage"`

	// DueAt is the next concrete occurrence. Recurrence is materialized
	// by rewriting DueAt forward one occurrence at a time.
	DueAt time.Time `json:"due_at"`

	Repeat Repeat `json:"repeat"`

	// IntervalDays only applies when Repeat is RepeatCustom.
	IntervalDays int `json:"interval_days"`

	// Notified is true once the poll loop has dispatched a notification
	// for the current DueAt.
	Notified bool `json:"notified"`

	// Taken is true once the user acknowledged the dose.
	Taken bool `json:"taken"`

	// Enabled reminders are the only ones polled and notified.
	Enabled bool `json:"enabled"`
}

// Clock returns the HH:MM time of day of the reminder.
func (r Reminder) Clock() string {
	return r.DueAt.Format(ClockLayout)
}

// FormatDue renders t in TimeLayout.
func FormatDue(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseDue parses a TimeLayout string in the local zone.
func ParseDue(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due time %q: %w", s, err)
	}
	return t, nil
}

// DueEvent is handed from the poll loop to the foreground when a
// reminder's occurrence becomes due.
type DueEvent struct {
	Reminder Reminder
	FiredAt  time.Time
}
