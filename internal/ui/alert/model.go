// Package alert shows due reminders one at a time, the way a pop-up
// would, and lets the user take, snooze or dismiss them.
package alert

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/theme"
)

// TakeMsg asks the parent to mark the alerted reminder taken.
type TakeMsg struct {
	Reminder model.Reminder
}

// SnoozeMsg asks the parent to prompt for a snooze duration.
type SnoozeMsg struct {
	Reminder model.Reminder
}

// DismissMsg is sent when the user closes an alert without acting.
type DismissMsg struct {
	Reminder model.Reminder
}

// Model holds the queue of pending alerts. The head of the queue is the
// one on screen.
type Model struct {
	keys   *keys.KeyMap
	queue  []model.DueEvent
	width  int
	height int
}

// New creates an empty alert queue.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Push queues an event. An event for a reminder already in the queue
// replaces the queued one.
func (m *Model) Push(ev model.DueEvent) {
	for i, q := range m.queue {
		if q.Reminder.ID == ev.Reminder.ID {
			m.queue[i] = ev
			return
		}
	}
	m.queue = append(m.queue, ev)
}

// Pop removes the alert on screen.
func (m *Model) Pop() {
	if len(m.queue) > 0 {
		m.queue = m.queue[1:]
	}
}

// Drop removes any queued alert for the reminder id.
func (m *Model) Drop(id string) {
	kept := m.queue[:0]
	for _, q := range m.queue {
		if q.Reminder.ID != id {
			kept = append(kept, q)
		}
	}
	m.queue = kept
}

// Current returns the alert on screen.
func (m Model) Current() (model.DueEvent, bool) {
	if len(m.queue) == 0 {
		return model.DueEvent{}, false
	}
	return m.queue[0], true
}

// Pending is the number of queued alerts, including the one on screen.
func (m Model) Pending() int {
	return len(m.queue)
}

// Update maps keys to alert actions. The parent pops the queue once the
// action has been carried out.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	ev, ok := m.Current()
	if !ok {
		return m, nil
	}
	r := ev.Reminder

	switch {
	case key.Matches(keyMsg, m.keys.Take):
		return m, func() tea.Msg { return TakeMsg{Reminder: r} }
	case key.Matches(keyMsg, m.keys.Snooze):
		return m, func() tea.Msg { return SnoozeMsg{Reminder: r} }
	case key.Matches(keyMsg, m.keys.Dismiss):
		return m, func() tea.Msg { return DismissMsg{Reminder: r} }
	}
	return m, nil
}

// View renders the alert on screen, centered in the content area.
func (m Model) View() string {
	ev, ok := m.Current()
	if !ok {
		return ""
	}
	r := ev.Reminder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorRed).
		Render("Medicine Reminder")

	body := fmt.Sprintf("Time to take your medicine:\n\nName:   %s\nDosage: %s\nTime:   %s", r.Name, r.Dosage, r.Clock())

	hints := theme.HelpStyle.Render("t take • s snooze • esc dismiss")
	if more := len(m.queue) - 1; more > 0 {
		hints += theme.HelpStyle.Render(fmt.Sprintf("  (+%d more)", more))
	}

	box := theme.AlertStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hints))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the alert dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
