package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/theme"
)

// DeleteMsg is sent when the user confirms deletion.
type DeleteMsg struct {
	Reminder model.Reminder
}

// CancelMsg is sent when the user declines or aborts.
type CancelMsg struct{}

// Model asks for confirmation before deleting a reminder.
type Model struct {
	form     *huh.Form
	ok       *bool
	reminder model.Reminder
	width    int
}

// New creates a confirmation prompt.
func New(width int) Model {
	return Model{ok: new(bool), width: width}
}

// Start asks whether r should be deleted.
func (m *Model) Start(r model.Reminder) tea.Cmd {
	m.reminder = r
	*m.ok = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete reminder for " + r.Name + "?").
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Keep").
				Value(m.ok),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.result()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) result() tea.Cmd {
	if !*m.ok {
		return func() tea.Msg { return CancelMsg{} }
	}
	r := m.reminder
	return func() tea.Msg { return DeleteMsg{Reminder: r} }
}

// View renders the prompt.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return theme.PanelStyle.Render(m.form.View())
}

// SetSize updates the prompt width.
func (m *Model) SetSize(width int) {
	m.width = width
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 70 {
		w = 70
	}
	return w
}
