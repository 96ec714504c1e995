package reminderlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/recurrence"
	"github.com/nhle/medreminder/internal/theme"
)

// Item wraps a reminder and its status at render time so it can be used
// in a bubbles/list.
type Item struct {
	Reminder model.Reminder
	Status   model.Status
	Now      time.Time
}

// NewItem classifies r relative to now.
func NewItem(r model.Reminder, now time.Time) Item {
	return Item{Reminder: r, Status: recurrence.Classify(r, now), Now: now}
}

// FilterValue returns the string used for filtering.
func (i Item) FilterValue() string { return i.Reminder.Name }

// Title returns the medicine name.
func (i Item) Title() string { return i.Reminder.Name }

// Description returns dosage, time and repeat as one line.
func (i Item) Description() string {
	parts := []string{i.Reminder.Dosage, recurrence.TimeLabel(i.Reminder.DueAt, i.Now)}
	if label := recurrence.RepeatLabel(i.Reminder.Repeat, i.Reminder.IntervalDays); label != "" {
		parts = append(parts, label)
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for reminder rows.
type ItemDelegate struct{}

func (d ItemDelegate) Height() int { return 1 }

func (d ItemDelegate) Spacing() int { return 0 }

func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single reminder row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(it, index == m.Index()))
}

func renderRow(it Item, selected bool) string {
	r := it.Reminder

	prefix := "○"
	if r.Taken {
		prefix = "✓"
	}

	badge := theme.StatusStyle(it.Status).Render(theme.StatusLabel(it.Status))

	dosage := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(r.Dosage)

	when := lipgloss.NewStyle().
		Foreground(theme.ColorBlue).
		Render(recurrence.TimeLabel(r.DueAt, it.Now))

	repeat := ""
	if label := recurrence.RepeatLabel(r.Repeat, r.IntervalDays); label != "" {
		repeat = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("  " + label)
	}

	paused := ""
	if !r.Enabled {
		paused = " (paused)"
	}

	line := fmt.Sprintf("%s %s %s  %s  %s%s%s", prefix, badge, r.Name, dosage, when, repeat, paused)

	if !r.Enabled {
		line = theme.DimmedStyle.Render(line)
	}

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
