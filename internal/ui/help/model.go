package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/theme"
)

// commands lists the command palette entries shown under the key table.
var commands = [][2]string{
	{"new", "add a reminder"},
	{"reload", "reload reminders from the store"},
	{"check", "scan for due reminders now"},
	{"theme", "switch between dark and light"},
	{"set-secret <key> <value>", "store email-password or twilio-auth-token in the keyring"},
	{"quit", "exit"},
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	cmdTitle := theme.TitleStyle.MarginTop(1).Render("Commands (press :)")
	rows := make([]string, 0, len(commands))
	for _, c := range commands {
		name := lipgloss.NewStyle().Foreground(theme.ColorBlue).Width(28).Render(c[0])
		rows = append(rows, name+theme.HelpStyle.Render(c[1]))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, cmdTitle, lipgloss.JoinVertical(lipgloss.Left, rows...))

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
