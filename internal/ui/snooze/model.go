package snooze

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/theme"
)

// SubmitMsg carries a validated snooze request.
type SubmitMsg struct {
	Reminder model.Reminder
	Minutes  int
}

// CancelMsg is sent when the prompt is closed without snoozing.
type CancelMsg struct{}

// Model is the snooze-minutes prompt.
type Model struct {
	input    textinput.Model
	reminder model.Reminder
	errorMsg string
	width    int
}

// New creates a snooze prompt.
func New(width int) Model {
	ti := textinput.New()
	ti.Prompt = "minutes: "
	ti.CharLimit = 4
	ti.Width = 10
	ti.Validate = digitsOnly

	return Model{input: ti, width: width}
}

// Start opens the prompt for r with the default duration filled in.
func (m *Model) Start(r model.Reminder, defaultMinutes int) tea.Cmd {
	m.reminder = r
	m.errorMsg = ""
	m.input.SetValue(strconv.Itoa(defaultMinutes))
	m.input.CursorEnd()
	return m.input.Focus()
}

// Update handles input for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			minutes, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
			if err == nil {
				err = reminder.ValidateSnooze(minutes)
			} else {
				err = reminder.ValidateSnooze(0)
			}
			if err != nil {
				m.errorMsg = reminder.UserMessage(err)
				return m, nil
			}
			m.input.Blur()
			r := m.reminder
			return m, func() tea.Msg { return SubmitMsg{Reminder: r, Minutes: minutes} }

		case "esc":
			m.input.Blur()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Snooze " + m.reminder.Name)

	lines := []string{title, m.input.View()}
	if m.errorMsg != "" {
		lines = append(lines, "", theme.ErrorTextStyle.Render(m.errorMsg))
	}
	lines = append(lines, "", theme.HelpStyle.Render("enter snooze • esc cancel"))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the prompt width.
func (m *Model) SetSize(width int) {
	m.width = width
}

func digitsOnly(s string) error {
	if _, err := strconv.Atoi(s); s != "" && err != nil {
		return err
	}
	return nil
}
