package reminderform

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/theme"
)

// SubmittedMsg is dispatched when the form is completed. ID is empty
// when creating a reminder.
type SubmittedMsg struct {
	ID    string
	Input reminder.Input
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name     string
	dosage   string
	clock    string
	repeat   model.Repeat
	interval string
}

func (fb *formBindings) input() reminder.Input {
	in := reminder.Input{
		Name:   fb.name,
		Dosage: fb.dosage,
		Time:   fb.clock,
		Repeat: fb.repeat,
	}
	if fb.repeat == model.RepeatCustom {
		in.IntervalDays, _ = strconv.Atoi(strings.TrimSpace(fb.interval))
	}
	return in
}

// Model is the Bubble Tea model for the reminder create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editID   string
	errorMsg string
	width    int
	height   int
}

// New creates a new reminder form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{repeat: model.RepeatOnce},
		width:  width,
		height: height,
	}
}

// StartCreate opens an empty form.
func (m *Model) StartCreate() tea.Cmd {
	return m.start("", reminder.Input{Repeat: model.RepeatOnce}, "")
}

// StartEdit opens the form filled with an existing reminder.
func (m *Model) StartEdit(r model.Reminder) tea.Cmd {
	return m.start(r.ID, reminder.InputFrom(r), "")
}

// Reopen shows the form again with the rejected values and the reason
// they were rejected.
func (m *Model) Reopen(id string, in reminder.Input, errMsg string) tea.Cmd {
	return m.start(id, in, errMsg)
}

func (m *Model) start(id string, in reminder.Input, errMsg string) tea.Cmd {
	m.editID = id
	m.errorMsg = errMsg
	m.fb.name = in.Name
	m.fb.dosage = in.Dosage
	m.fb.clock = in.Time
	m.fb.repeat = in.Repeat
	if m.fb.repeat == "" {
		m.fb.repeat = model.RepeatOnce
	}
	m.fb.interval = ""
	if in.IntervalDays > 0 {
		m.fb.interval = strconv.Itoa(in.IntervalDays)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Editing reports whether the form edits an existing reminder.
func (m Model) Editing() bool {
	return m.editID != ""
}

// Update handles messages for the form.
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
		return m, m.handleSubmit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Reminder"
	if m.Editing() {
		titleText = "Edit Reminder"
	}

	content := theme.TitleStyle.Render(titleText) + "\n"
	if m.errorMsg != "" {
		content += theme.ErrorTextStyle.Render(m.errorMsg) + "\n\n"
	}
	content += m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	repeatOpts := make([]huh.Option[model.Repeat], len(model.Repeats))
	for i, r := range model.Repeats {
		repeatOpts[i] = huh.NewOption(string(r), r)
	}

	fb := m.fb
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Medicine").
				Placeholder("e.g. Aspirin").
				Value(&fb.name).
				Validate(checkField(fb, "Name", func(in *reminder.Input, s string) { in.Name = s })),
			huh.NewInput().
				Title("Dosage").
				Placeholder("e.g. 2 tablets").
				Value(&fb.dosage).
				Validate(checkField(fb, "Dosage", func(in *reminder.Input, s string) { in.Dosage = s })),
			huh.NewInput().
				Title("Time").
				Placeholder("HH:MM (24h)").
				CharLimit(5).
				Value(&fb.clock).
				Validate(checkField(fb, "Time", func(in *reminder.Input, s string) { in.Time = s })),
			huh.NewSelect[model.Repeat]().
				Title("Repeat").
				Options(repeatOpts...).
				Value(&fb.repeat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Every how many days?").
				Placeholder("e.g. 3").
				Value(&fb.interval).
				Validate(func(s string) error {
					_, err := reminder.ParseInterval(s)
					return userError(err)
				}),
		).WithHideFunc(func() bool { return fb.repeat != model.RepeatCustom }),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithShowHelp(true)
}

// checkField validates one field using the same rules as the service.
func checkField(fb *formBindings, field string, set func(*reminder.Input, string)) func(string) error {
	return func(s string) error {
		in := fb.input()
		set(&in, s)
		return userError(in.ValidateField(field))
	}
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmittedMsg{ID: m.editID, Input: m.fb.input()}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

// userError strips the field prefix so huh shows the plain message.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(reminder.UserMessage(err))
}
