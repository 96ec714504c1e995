package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/medreminder/internal/keys"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/recurrence"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/store"
	appsync "github.com/nhle/medreminder/internal/sync"
	"github.com/nhle/medreminder/internal/theme"
	"github.com/nhle/medreminder/internal/ui"
	"github.com/nhle/medreminder/internal/ui/alert"
	"github.com/nhle/medreminder/internal/ui/command"
	"github.com/nhle/medreminder/internal/ui/confirm"
	"github.com/nhle/medreminder/internal/ui/detail"
	helpview "github.com/nhle/medreminder/internal/ui/help"
	"github.com/nhle/medreminder/internal/ui/reminderform"
	"github.com/nhle/medreminder/internal/ui/reminderlist"
	"github.com/nhle/medreminder/internal/ui/snooze"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewHelp
	ViewCommand
	ViewForm
	ViewAlert
	ViewSnooze
	ViewConfirm
	ViewDetail
)

// Poller is the part of the poll loop the UI needs.
type Poller interface {
	Status() appsync.Status
	Trigger()
}

// SecretStore saves credentials entered through the command palette.
type SecretStore interface {
	Set(key, value string) error
}

// Deps are the collaborators of the root model.
type Deps struct {
	Service *reminder.Service
	Poller  Poller

	// Events delivers due reminders from the visual sink.
	Events <-chan model.DueEvent

	// Secrets may be nil when no keyring could be opened.
	Secrets SecretStore

	Config     *model.AppConfig
	ConfigPath string

	// Channels names the active notification sinks, for the header.
	Channels []string

	Log *zap.SugaredLogger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the reminder service.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	svc        *reminder.Service
	poller     Poller
	events     <-chan model.DueEvent
	secrets    SecretStore
	cfg        *model.AppConfig
	configPath string
	channels   []string
	log        *zap.SugaredLogger

	list        reminderlist.Model
	detail      detail.Model
	form        reminderform.Model
	alert       alert.Model
	snooze      snooze.Model
	confirm     confirm.Model
	helpView    helpview.Model
	commandView command.Model

	stats  recurrence.Stats
	ready  bool
	info   string
	errMsg string
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()

	cfg := d.Config
	if cfg == nil {
		cfg = &model.AppConfig{Display: model.DisplayConfig{Theme: theme.Dark, SnoozeMinutes: 10}}
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	theme.Apply(cfg.Display.Theme)

	return Model{
		currentView: ViewList,
		keys:        k,
		svc:         d.Service,
		poller:      d.Poller,
		events:      d.Events,
		secrets:     d.Secrets,
		cfg:         cfg,
		configPath:  d.ConfigPath,
		channels:    d.Channels,
		log:         log,
		list:        reminderlist.New(k, 80, 20),
		detail:      detail.New(k, 80, 20),
		form:        reminderform.New(80, 20),
		alert:       alert.New(k, 80, 20),
		snooze:      snooze.New(80),
		confirm:     confirm.New(80),
		helpView:    helpview.New(k, 80, 20),
		commandView: command.New(80),
	}
}

// Init loads the reminders and starts listening for due events and the
// refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadReminders(),
		waitForEvent(m.events),
		tick(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.alert.SetSize(w, h)
		m.snooze.SetSize(w)
		m.confirm.SetSize(w)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case remindersLoadedMsg:
		if msg.err != nil {
			m.errMsg = "Loading reminders failed: " + msg.err.Error()
			return m, nil
		}
		now := m.svc.Now()
		m.stats = recurrence.Summarize(msg.reminders, now)
		cmd := m.list.SetReminders(msg.reminders, now)
		if m.currentView == ViewDetail && !m.detail.Refresh(msg.reminders, now) {
			m.currentView = ViewList
		}
		return m, cmd

	case actionResultMsg:
		return m.handleActionResult(msg)

	case dueEventMsg:
		m.alert.Push(msg.event)
		switch m.currentView {
		case ViewList, ViewHelp, ViewDetail:
			m.currentView = ViewAlert
		}
		return m, tea.Batch(waitForEvent(m.events), m.loadReminders())

	case tickMsg:
		return m, tea.Batch(m.loadReminders(), tick())

	case configSavedMsg:
		if msg.err != nil {
			m.errMsg = "Saving settings failed: " + msg.err.Error()
		}
		return m, nil

	case secretSavedMsg:
		if msg.err != nil {
			m.errMsg = "Saving secret failed: " + msg.err.Error()
			return m, nil
		}
		m.info = fmt.Sprintf("Saved %s to the keyring; restart to use it.", msg.key)
		return m, nil

	case alert.TakeMsg:
		m.alert.Drop(msg.Reminder.ID)
		m.showNext()
		return m, m.markTaken(msg.Reminder)

	case alert.SnoozeMsg:
		m.previousView = ViewAlert
		m.currentView = ViewSnooze
		cmd := m.snooze.Start(msg.Reminder, m.cfg.Display.SnoozeMinutes)
		return m, cmd

	case alert.DismissMsg:
		m.alert.Drop(msg.Reminder.ID)
		m.showNext()
		return m, nil

	case snooze.SubmitMsg:
		m.alert.Drop(msg.Reminder.ID)
		m.showNext()
		return m, m.snoozeReminder(msg.Reminder, msg.Minutes)

	case snooze.CancelMsg:
		switch {
		case m.previousView == ViewAlert && m.alert.Pending() > 0:
			m.currentView = ViewAlert
		case m.previousView == ViewDetail:
			m.currentView = ViewDetail
		default:
			m.showNext()
		}
		return m, nil

	case detail.BackMsg:
		m.showNext()
		return m, nil

	case detail.ActionMsg:
		return m.handleDetailAction(msg)

	case reminderform.SubmittedMsg:
		m.showNext()
		if msg.ID == "" {
			return m, m.createReminder(msg.Input)
		}
		return m, m.editReminder(msg.ID, msg.Input)

	case reminderform.CancelMsg:
		m.showNext()
		return m, nil

	case confirm.DeleteMsg:
		m.alert.Drop(msg.Reminder.ID)
		m.showNext()
		return m, m.deleteReminder(msg.Reminder)

	case confirm.CancelMsg:
		m.showNext()
		return m, nil

	case command.CommandMsg:
		m.showNext()
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg:
		m.showNext()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.info = ""
		m.errMsg = ""

		switch m.currentView {
		case ViewList:
			if !m.list.Searching() {
				if next, cmd, handled := m.handleListKeys(msg); handled {
					return next, cmd
				}
			}
		case ViewHelp:
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.showNext()
				return m, nil
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleListKeys runs the list view shortcuts.
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.New):
		cmd := m.openCreateForm()
		return m, cmd, true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadReminders(), true

	case key.Matches(msg, m.keys.Theme):
		cmd := m.toggleTheme()
		return m, cmd, true
	}

	r, ok := m.list.SelectedReminder()
	if !ok {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		m.currentView = ViewDetail
		m.detail.SetReminder(r, m.svc.Now())
		return m, nil, true

	case key.Matches(msg, m.keys.Edit):
		m.currentView = ViewForm
		cmd := m.form.StartEdit(r)
		return m, cmd, true

	case key.Matches(msg, m.keys.Delete):
		m.currentView = ViewConfirm
		cmd := m.confirm.Start(r)
		return m, cmd, true

	case key.Matches(msg, m.keys.Take):
		return m, m.markTaken(r), true

	case key.Matches(msg, m.keys.Snooze):
		m.previousView = ViewList
		m.currentView = ViewSnooze
		cmd := m.snooze.Start(r, m.cfg.Display.SnoozeMinutes)
		return m, cmd, true

	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleEnabled(r), true
	}
	return m, nil, false
}

// handleDetailAction runs a shortcut pressed in the detail view.
func (m Model) handleDetailAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	r := msg.Reminder
	switch msg.Action {
	case detail.ActionEdit:
		m.currentView = ViewForm
		cmd := m.form.StartEdit(r)
		return m, cmd
	case detail.ActionDelete:
		m.currentView = ViewConfirm
		cmd := m.confirm.Start(r)
		return m, cmd
	case detail.ActionSnooze:
		m.previousView = ViewDetail
		m.currentView = ViewSnooze
		cmd := m.snooze.Start(r, m.cfg.Display.SnoozeMinutes)
		return m, cmd
	case detail.ActionTake:
		return m, m.markTaken(r)
	case detail.ActionToggle:
		return m, m.toggleEnabled(r)
	}
	return m, nil
}

// handleActionResult reports the outcome of a reminder operation. A
// rejected form submission reopens the form with the entered values.
func (m Model) handleActionResult(msg actionResultMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.info = msg.done
		return m, m.loadReminders()
	}

	m.log.Warnw("reminder action failed", "action", msg.action, "error", msg.err)

	if msg.input != nil && (reminder.IsValidationError(msg.err) || isDuplicate(msg.err)) {
		m.currentView = ViewForm
		cmd := m.form.Reopen(msg.id, *msg.input, reminder.UserMessage(msg.err))
		return m, cmd
	}

	if errors.Is(msg.err, store.ErrNotFound) {
		m.errMsg = "That reminder no longer exists."
	} else {
		m.errMsg = reminder.UserMessage(msg.err)
	}
	return m, m.loadReminders()
}

// showNext returns to the list, or to the next queued alert.
func (m *Model) showNext() {
	if m.alert.Pending() > 0 {
		m.currentView = ViewAlert
		return
	}
	m.currentView = ViewList
}

func (m *Model) openCreateForm() tea.Cmd {
	m.currentView = ViewForm
	return m.form.StartCreate()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewAlert:
		m.alert, cmd = m.alert.Update(msg)
	case ViewSnooze:
		m.snooze, cmd = m.snooze.Update(msg)
	case ViewConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Medicine Reminder"
	if n := m.alert.Pending(); n > 0 {
		title = fmt.Sprintf("Medicine Reminder [%d due]", n)
	}

	header := m.layout.RenderHeader(title, m.pollStatus())
	summary := m.layout.RenderSummary(m.summary())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.errMsg)

	return m.layout.RenderWithFrame(header, summary, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.list.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewForm:
		return m.form.View()
	case ViewAlert:
		return m.alert.View()
	case ViewSnooze:
		return m.snooze.View()
	case ViewConfirm:
		return m.confirm.View()
	default:
		return ""
	}
}

// pollStatus describes the poll loop for the header.
func (m Model) pollStatus() string {
	if m.poller == nil {
		return "not checking"
	}
	s := m.poller.Status()
	switch {
	case s.State == appsync.PollError:
		return "⚠ check failed"
	case s.State == appsync.PollScanning:
		return "checking..."
	case s.LastScan.IsZero():
		return "starting"
	default:
		return "checked " + s.LastScan.Format("15:04:05")
	}
}

// summary is the stats line shown under the header.
func (m Model) summary() string {
	s := m.stats
	line := fmt.Sprintf("Total %d • Today %d • Taken today %d • Overdue %d", s.Total, s.Today, s.TakenToday, s.Overdue)
	if len(m.channels) > 0 {
		line += " • Alerts: " + strings.Join(m.channels, ", ")
	}
	return line
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.info != "" {
		return m.info
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewForm:
		return "enter next/submit | esc cancel"
	case ViewAlert:
		return "t take | s snooze | esc dismiss"
	case ViewSnooze:
		return "enter snooze | esc cancel"
	case ViewConfirm:
		return "←/→ choose | enter confirm | esc cancel"
	case ViewDetail:
		return "esc back | e edit | x take | s snooze | space on/off | d delete"
	default:
		if q := m.list.Query(); q != "" {
			return "search: " + q + " | / edit search"
		}
		return "q quit | ? help | n new | enter details | e edit | d delete | x take | s snooze | space on/off"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(line string) tea.Cmd {
	name, args := command.Parse(line)
	switch name {
	case "reload", "refresh":
		return m.loadReminders()
	case "new", "add":
		return m.openCreateForm()
	case "check":
		if m.poller != nil {
			m.poller.Trigger()
		}
		m.info = "Checking for due reminders..."
		return nil
	case "theme":
		return m.toggleTheme()
	case "set-secret":
		if len(args) != 2 {
			m.errMsg = "usage: set-secret <key> <value>"
			return nil
		}
		return m.setSecret(args[0], args[1])
	case "quit", "q":
		return tea.Quit
	default:
		m.errMsg = fmt.Sprintf("Unknown command %q. Press ? for the list.", name)
		return nil
	}
}
