package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/medreminder/internal/model"
)

// Stats summarizes a reminder set for the header panel.
type Stats struct {
	Total      int
	Today      int
	TakenToday int
	Overdue    int
}

// Summarize counts reminders relative to now.
func Summarize(reminders []model.Reminder, now time.Time) Stats {
	var s Stats
	s.Total = len(reminders)
	for _, r := range reminders {
		today := sameDay(r.DueAt, now)
		if today {
			s.Today++
			if r.Taken {
				s.TakenToday++
			}
		}
		if r.DueAt.Before(now) && !r.Taken {
			s.Overdue++
		}
	}
	return s
}

// TimeLabel renders due relative to now: "Today at 08:00 AM",
// "Tomorrow at 08:00 AM", or "Jan 02 at 08:00 AM".
func TimeLabel(due, now time.Time) string {
	clock := due.Format("03:04 PM")
	switch {
	case sameDay(due, now):
		return "Today at " + clock
	case sameDay(due, now.AddDate(0, 0, 1)):
		return "Tomorrow at " + clock
	default:
		return due.Format("Jan 02") + " at " + clock
	}
}

// RepeatLabel describes a repeat policy, or returns "" for RepeatOnce.
func RepeatLabel(repeat model.Repeat, intervalDays int) string {
	switch repeat {
	case model.RepeatOnce, "":
		return ""
	case model.RepeatCustom:
		if intervalDays == 1 {
			return "Repeats every day"
		}
		return fmt.Sprintf("Repeats every %d days", intervalDays)
	default:
		return "Repeats " + strings.ToLower(string(repeat))
	}
}
