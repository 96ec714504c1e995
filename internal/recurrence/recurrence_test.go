package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/medreminder/internal/model"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := model.ParseDue(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return ts
}

func TestNextOccurrence(t *testing.T) {
	base := at(t, "2024-01-01 08:00")

	tests := []struct {
		name     string
		repeat   model.Repeat
		interval int
		want     string
		ok       bool
	}{
		{"daily", model.RepeatDaily, 0, "2024-01-02 08:00", true},
		{"weekly", model.RepeatWeekly, 0, "2024-01-08 08:00", true},
		{"custom three days", model.RepeatCustom, 3, "2024-01-04 08:00", true},
		{"custom without interval falls back to one day", model.RepeatCustom, 0, "2024-01-02 08:00", true},
		{"once is not advanced", model.RepeatOnce, 0, "2024-01-01 08:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextOccurrence(base, tt.repeat, tt.interval)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, model.FormatDue(got))
		})
	}
}

func TestNextOccurrenceDoesNotCatchUp(t *testing.T) {
	// A reminder missed for nine days still moves by a single day.
	due := at(t, "2024-01-01 08:00")
	got, ok := NextOccurrence(due, model.RepeatDaily, 0)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-02 08:00", model.FormatDue(got))
	assert.True(t, got.Before(at(t, "2024-01-10 09:00")))
}

func TestNextOccurrenceIsStrictlyLater(t *testing.T) {
	due := at(t, "2024-02-28 23:59")
	for _, repeat := range []model.Repeat{model.RepeatDaily, model.RepeatWeekly, model.RepeatCustom} {
		got, ok := NextOccurrence(due, repeat, 2)
		assert.True(t, ok)
		assert.True(t, got.After(due), "repeat %s", repeat)
	}
}

func TestInitialSchedule(t *testing.T) {
	now := at(t, "2024-01-01 09:00")

	assert.Equal(t, "2024-01-02 07:30", model.FormatDue(InitialSchedule(7, 30, now)))
	assert.Equal(t, "2024-01-01 20:00", model.FormatDue(InitialSchedule(20, 0, now)))
	// Exactly now is not in the future.
	assert.Equal(t, "2024-01-02 09:00", model.FormatDue(InitialSchedule(9, 0, now)))
}

func TestInitialScheduleZeroesSeconds(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 45, 0, time.Local)
	got := InitialSchedule(9, 1, now)
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, "2024-01-01 09:01", model.FormatDue(got))
}

func TestClassify(t *testing.T) {
	now := at(t, "2024-01-01 09:00")

	tests := []struct {
		name  string
		due   string
		taken bool
		want  model.Status
	}{
		{"taken wins over past due", "2023-12-01 08:00", true, model.StatusTaken},
		{"taken wins over future", "2024-02-01 08:00", true, model.StatusTaken},
		{"past and not taken is overdue", "2024-01-01 08:59", false, model.StatusOverdue},
		{"later this hour is soon", "2024-01-01 09:30", false, model.StatusDueSoon},
		{"next hour is soon", "2024-01-01 10:45", false, model.StatusDueSoon},
		{"two hours out is scheduled", "2024-01-01 11:00", false, model.StatusScheduled},
		{"tomorrow is scheduled", "2024-01-02 09:00", false, model.StatusScheduled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := model.Reminder{DueAt: at(t, tt.due), Taken: tt.taken}
			assert.Equal(t, tt.want, Classify(r, now))
		})
	}
}

func TestClassifyOverdueAgreesWithIsDue(t *testing.T) {
	now := at(t, "2024-01-01 09:00")
	r := model.Reminder{DueAt: at(t, "2024-01-01 08:00"), Enabled: true}

	assert.Equal(t, model.StatusOverdue, Classify(r, now))
	assert.True(t, IsDue(r, now))
}

func TestIsDue(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 40, 0, time.Local)
	due := at(t, "2024-01-01 09:00")

	base := model.Reminder{DueAt: due, Enabled: true}
	assert.True(t, IsDue(base, now))

	disabled := base
	disabled.Enabled = false
	assert.False(t, IsDue(disabled, now))

	notified := base
	notified.Notified = true
	assert.False(t, IsDue(notified, now))

	taken := base
	taken.Taken = true
	assert.False(t, IsDue(taken, now))

	future := base
	future.DueAt = at(t, "2024-01-01 09:01")
	assert.False(t, IsDue(future, now))
}

func TestSummarize(t *testing.T) {
	now := at(t, "2024-01-01 12:00")
	reminders := []model.Reminder{
		{DueAt: at(t, "2024-01-01 08:00"), Taken: true},
		{DueAt: at(t, "2024-01-01 09:00")},
		{DueAt: at(t, "2024-01-01 18:00")},
		{DueAt: at(t, "2023-12-31 18:00")},
		{DueAt: at(t, "2024-01-05 18:00")},
	}

	assert.Equal(t, Stats{Total: 5, Today: 3, TakenToday: 1, Overdue: 2}, Summarize(reminders, now))
}

func TestTimeLabel(t *testing.T) {
	now := at(t, "2024-01-01 12:00")

	assert.Equal(t, "Today at 08:00 PM", TimeLabel(at(t, "2024-01-01 20:00"), now))
	assert.Equal(t, "Tomorrow at 07:30 AM", TimeLabel(at(t, "2024-01-02 07:30"), now))
	assert.Equal(t, "Jan 05 at 09:15 AM", TimeLabel(at(t, "2024-01-05 09:15"), now))
}

func TestRepeatLabel(t *testing.T) {
	assert.Equal(t, "", RepeatLabel(model.RepeatOnce, 0))
	assert.Equal(t, "Repeats daily", RepeatLabel(model.RepeatDaily, 0))
	assert.Equal(t, "Repeats weekly", RepeatLabel(model.RepeatWeekly, 0))
	assert.Equal(t, "Repeats every 3 days", RepeatLabel(model.RepeatCustom, 3))
}
