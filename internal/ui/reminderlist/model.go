package reminderlist

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/theme"
)

// Model is the reminder list view component. It does not talk to the
// store; the root model hands it fresh reminders after every change.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	reminders   []model.Reminder
	now         time.Time
	query       string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new reminder list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Reminders"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("reminder", "reminders")
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search medicines..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetReminders replaces the list contents, classifying each reminder
// relative to now. The selection follows the previously selected reminder.
func (m *Model) SetReminders(reminders []model.Reminder, now time.Time) tea.Cmd {
	m.reminders = reminders
	m.now = now
	return m.refresh()
}

func (m *Model) refresh() tea.Cmd {
	selectedID := ""
	if r, ok := m.SelectedReminder(); ok {
		selectedID = r.ID
	}

	q := strings.ToLower(m.query)
	items := make([]list.Item, 0, len(m.reminders))
	selectIdx := -1
	for _, r := range m.reminders {
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) {
			continue
		}
		if r.ID == selectedID {
			selectIdx = len(items)
		}
		items = append(items, NewItem(r, m.now))
	}

	cmd := m.list.SetItems(items)
	if selectIdx >= 0 {
		m.list.Select(selectIdx)
	}
	return cmd
}

// SelectedReminder returns the reminder under the cursor.
func (m Model) SelectedReminder() (model.Reminder, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Reminder{}, false
	}
	return it.Reminder, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Query returns the active name filter.
func (m Model) Query() string {
	return m.query
}

// Update handles navigation and search input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		if key.Matches(msg, m.keys.Search) {
			m.searchMode = true
			m.searchInput.SetValue(m.query)
			return m, m.searchInput.Focus()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		m.query = strings.TrimSpace(m.searchInput.Value())
		return m, m.refresh()

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.query = ""
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// View renders the reminder list.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.query != "" {
		return style.Render("No medicines match \"" + m.query + "\".\nPress / then esc to clear the search.")
	}

	return style.Render("No reminders yet.\n\nPress n to add your first medicine.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
