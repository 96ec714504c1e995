package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/recurrence"
	"github.com/nhle/medreminder/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Actions carried by ActionMsg.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionTake   = "take"
	ActionSnooze = "snooze"
	ActionToggle = "toggle"
)

// ActionMsg asks the parent to run an action on the shown reminder.
type ActionMsg struct {
	Action   string
	Reminder model.Reminder
}

// Model is the reminder detail view component.
type Model struct {
	reminder *model.Reminder
	now      time.Time
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.reminder != nil {
		r := *m.reminder
		action := ""
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }
		case key.Matches(msg, m.keys.Edit):
			action = ActionEdit
		case key.Matches(msg, m.keys.Delete):
			action = ActionDelete
		case key.Matches(msg, m.keys.Take):
			action = ActionTake
		case key.Matches(msg, m.keys.Snooze):
			action = ActionSnooze
		case key.Matches(msg, m.keys.Toggle):
			action = ActionToggle
		}
		if action != "" {
			return m, func() tea.Msg { return ActionMsg{Action: action, Reminder: r} }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.reminder == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No reminder selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.reminder == nil {
		return ""
	}
	r := *m.reminder
	status := recurrence.Classify(r, m.now)

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(r.Name))

	badges := []string{theme.StatusStyle(status).Render(theme.StatusLabel(status))}
	if !r.Enabled {
		badges = append(badges, "  ", theme.DimmedStyle.Render("PAUSED"))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-10s", label+":")), valStyle.Render(value))
	}

	sections = append(sections,
		row("Dosage", r.Dosage),
		row("Next dose", recurrence.TimeLabel(r.DueAt, m.now)),
		row("Due at", model.FormatDue(r.DueAt)),
		row("Repeat", repeatText(r)),
		row("Notified", yesNo(r.Notified)),
		row("Taken", yesNo(r.Taken)),
		row("Enabled", yesNo(r.Enabled)),
	)

	if next, ok := recurrence.NextOccurrence(r.DueAt, r.Repeat, r.IntervalDays); ok {
		sections = append(sections, row("After that", model.FormatDue(next)))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	sections = append(sections, "", sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 60), 0))), "")
	sections = append(sections, theme.HelpStyle.Render("e edit • x take • s snooze • space on/off • d delete • esc back"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetReminder updates the reminder being displayed and re-renders.
func (m *Model) SetReminder(r model.Reminder, now time.Time) {
	m.reminder = &r
	m.now = now
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Refresh re-renders the shown reminder from a fresh list. It reports
// false when the reminder is gone.
func (m *Model) Refresh(rs []model.Reminder, now time.Time) bool {
	if m.reminder == nil {
		return false
	}
	for _, r := range rs {
		if r.ID == m.reminder.ID {
			m.reminder = &r
			m.now = now
			m.viewport.SetContent(m.renderContent())
			return true
		}
	}
	m.reminder = nil
	return false
}

// Reminder returns the shown reminder, if any.
func (m Model) Reminder() (model.Reminder, bool) {
	if m.reminder == nil {
		return model.Reminder{}, false
	}
	return *m.reminder, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.reminder != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func repeatText(r model.Reminder) string {
	if label := recurrence.RepeatLabel(r.Repeat, r.IntervalDays); label != "" {
		return label
	}
	return "Does not repeat"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
