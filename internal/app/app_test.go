package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/reminder"
	appsync "github.com/nhle/medreminder/internal/sync"
	"github.com/nhle/medreminder/internal/testutil"
	"github.com/nhle/medreminder/internal/theme"
	"github.com/nhle/medreminder/internal/ui/alert"
	"github.com/nhle/medreminder/internal/ui/command"
	"github.com/nhle/medreminder/internal/ui/confirm"
	"github.com/nhle/medreminder/internal/ui/detail"
	"github.com/nhle/medreminder/internal/ui/reminderform"
	"github.com/nhle/medreminder/internal/ui/snooze"
)

type fakePoller struct {
	status    appsync.Status
	triggered int
}

func (p *fakePoller) Status() appsync.Status { return p.status }
func (p *fakePoller) Trigger()               { p.triggered++ }

type fakeSecrets map[string]string

func (s fakeSecrets) Set(key, value string) error {
	s[key] = value
	return nil
}

type harness struct {
	svc    *reminder.Service
	poller *fakePoller
	clock  *testutil.Clock
}

func newModel(t *testing.T, d Deps) (Model, *harness) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := &testutil.Clock{T: testutil.MustTime(t, "2024-01-01 09:00")}
	h := &harness{
		svc:    reminder.NewService(st, nil, reminder.WithClock(clock.Now)),
		poller: &fakePoller{},
		clock:  clock,
	}
	d.Service = h.svc
	d.Poller = h.poller

	m, _ := update(New(d), tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, h
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// exec runs cmd and feeds its message back into the model.
func exec(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	return update(m, cmd())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (h *harness) create(t *testing.T, name, clock string, repeat model.Repeat) model.Reminder {
	t.Helper()
	r, err := h.svc.Create(context.Background(), reminder.Input{Name: name, Dosage: "1 tablet", Time: clock, Repeat: repeat})
	require.NoError(t, err)
	return r
}

func (h *harness) get(t *testing.T, id string) model.Reminder {
	t.Helper()
	r, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return *r
}

func TestLoadFillsListAndStats(t *testing.T) {
	m, h := newModel(t, Deps{Channels: []string{"visual", "sound"}})
	h.create(t, "Aspirin", "08:00", model.RepeatDaily)
	h.create(t, "Ibuprofen", "20:00", model.RepeatOnce)

	m, _ = exec(t, m, m.loadReminders())

	assert.Equal(t, 2, m.stats.Total)
	assert.Equal(t, 1, m.stats.Today)
	selected, ok := m.list.SelectedReminder()
	require.True(t, ok)
	assert.Equal(t, "Ibuprofen", selected.Name, "list is ordered by due time")

	view := m.View()
	assert.Contains(t, view, "Total 2")
	assert.Contains(t, view, "Alerts: visual, sound")
	assert.Contains(t, view, "starting")
}

func TestDueEventShowsAlertAndTakeAdvances(t *testing.T) {
	m, h := newModel(t, Deps{})
	r := h.create(t, "Aspirin", "08:00", model.RepeatDaily)

	m, _ = update(m, dueEventMsg{event: model.DueEvent{Reminder: r, FiredAt: h.clock.T}})
	assert.Equal(t, ViewAlert, m.currentView)
	assert.Contains(t, m.View(), "Medicine Reminder [1 due]")

	m, cmd := update(m, runes("t"))
	m, cmd = exec(t, m, cmd)
	assert.Equal(t, ViewList, m.currentView)
	assert.Zero(t, m.alert.Pending())

	m, _ = exec(t, m, cmd)
	assert.Contains(t, m.info, "Marked Aspirin as taken")

	got := h.get(t, r.ID)
	assert.Equal(t, "2024-01-03 08:00", model.FormatDue(got.DueAt))
	assert.False(t, got.Taken)
	assert.False(t, got.Notified)
}

func TestSnoozeFromAlertUsesDefaultMinutes(t *testing.T) {
	m, h := newModel(t, Deps{})
	r := h.create(t, "Aspirin", "08:00", model.RepeatOnce)

	m, _ = update(m, dueEventMsg{event: model.DueEvent{Reminder: r}})
	m, cmd := update(m, runes("s"))
	m, _ = exec(t, m, cmd)
	require.Equal(t, ViewSnooze, m.currentView)

	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = exec(t, m, cmd)
	assert.Equal(t, ViewList, m.currentView)

	m, _ = exec(t, m, cmd)
	assert.Empty(t, m.errMsg)
	assert.Equal(t, "2024-01-02 08:10", model.FormatDue(h.get(t, r.ID).DueAt))
}

func TestSnoozeCancelReturnsToAlert(t *testing.T) {
	m, h := newModel(t, Deps{})
	r := h.create(t, "Aspirin", "08:00", model.RepeatOnce)

	m, _ = update(m, dueEventMsg{event: model.DueEvent{Reminder: r}})
	m, _ = update(m, alert.SnoozeMsg{Reminder: r})
	m, _ = update(m, snooze.CancelMsg{})
	assert.Equal(t, ViewAlert, m.currentView)

	m, _ = update(m, alert.DismissMsg{Reminder: r})
	assert.Equal(t, ViewList, m.currentView)
}

func TestAlertWaitsWhileFormIsOpen(t *testing.T) {
	m, h := newModel(t, Deps{})
	r := h.create(t, "Aspirin", "08:00", model.RepeatOnce)

	m, _ = update(m, runes("n"))
	require.Equal(t, ViewForm, m.currentView)

	m, _ = update(m, dueEventMsg{event: model.DueEvent{Reminder: r}})
	assert.Equal(t, ViewForm, m.currentView)

	m, _ = update(m, reminderform.CancelMsg{})
	assert.Equal(t, ViewAlert, m.currentView)
}

func TestRejectedSubmissionReopensForm(t *testing.T) {
	m, h := newModel(t, Deps{})
	h.create(t, "Aspirin", "08:00", model.RepeatDaily)

	in := reminder.Input{Name: "aspirin", Dosage: "2", Time: "08:00", Repeat: model.RepeatOnce}
	m, cmd := update(m, reminderform.SubmittedMsg{Input: in})
	m, _ = exec(t, m, cmd)

	assert.Equal(t, ViewForm, m.currentView)
	assert.Contains(t, m.View(), "A reminder with the same name and time already exists.")
}

func TestListKeysToggleAndDelete(t *testing.T) {
	m, h := newModel(t, Deps{})
	r := h.create(t, "Aspirin", "08:00", model.RepeatDaily)
	m, _ = exec(t, m, m.loadReminders())

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = exec(t, m, cmd)
	assert.Equal(t, "Paused Aspirin.", m.info)
	assert.False(t, h.get(t, r.ID).Enabled)

	m, _ = update(m, runes("d"))
	require.Equal(t, ViewConfirm, m.currentView)

	m, cmd = update(m, confirm.DeleteMsg{Reminder: r})
	m, _ = exec(t, m, cmd)
	assert.Equal(t, ViewList, m.currentView)

	_, err := h.svc.Get(context.Background(), r.ID)
	assert.Error(t, err)
}

func TestDetailViewActions(t *testing.T) {
	m, h := newModel(t, Deps{})
	r := h.create(t, "Aspirin", "08:00", model.RepeatDaily)
	m, _ = exec(t, m, m.loadReminders())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "Repeats daily")

	m, _ = update(m, detail.ActionMsg{Action: detail.ActionSnooze, Reminder: r})
	require.Equal(t, ViewSnooze, m.currentView)
	m, _ = update(m, snooze.CancelMsg{})
	assert.Equal(t, ViewDetail, m.currentView)

	m, cmd := update(m, detail.ActionMsg{Action: detail.ActionToggle, Reminder: r})
	m, cmd = exec(t, m, cmd)
	m, _ = exec(t, m, cmd)
	assert.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "PAUSED")

	require.NoError(t, h.svc.Delete(context.Background(), r.ID))
	m, _ = exec(t, m, m.loadReminders())
	assert.Equal(t, ViewList, m.currentView, "detail closes when its reminder is gone")
}

func TestActionOnVanishedReminder(t *testing.T) {
	m, _ := newModel(t, Deps{})

	m, cmd := update(m, alert.TakeMsg{Reminder: model.Reminder{ID: "gone", Name: "Ghost"}})
	m, _ = exec(t, m, cmd)
	assert.Equal(t, "That reminder no longer exists.", m.errMsg)
}

func TestCommands(t *testing.T) {
	secrets := fakeSecrets{}
	m, h := newModel(t, Deps{Secrets: secrets})

	m, _ = update(m, command.CommandMsg("check"))
	assert.Equal(t, 1, h.poller.triggered)

	m, cmd := update(m, command.CommandMsg("set-secret email-password hunter2"))
	m, _ = exec(t, m, cmd)
	assert.Equal(t, "hunter2", secrets["email-password"])
	assert.Contains(t, m.info, "email-password")

	m, _ = update(m, command.CommandMsg("set-secret only-key"))
	assert.Contains(t, m.errMsg, "usage")

	m, _ = update(m, command.CommandMsg("launch"))
	assert.Contains(t, m.errMsg, `Unknown command "launch"`)

	m, _ = update(m, command.CommandMsg("new"))
	assert.Equal(t, ViewForm, m.currentView)
}

func TestThemeToggleIsSaved(t *testing.T) {
	t.Cleanup(func() { theme.Apply(theme.Dark) })

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display:\n  snooze_minutes: 15\n"), 0o644))
	cfg := &model.AppConfig{Display: model.DisplayConfig{Theme: theme.Dark, SnoozeMinutes: 15}}
	cfg.Store.SQLitePath = "/tmp/one-off-flag.db"
	m, _ := newModel(t, Deps{Config: cfg, ConfigPath: path})

	m, cmd := update(m, runes("T"))
	m, _ = exec(t, m, cmd)
	assert.Empty(t, m.errMsg)
	assert.Equal(t, theme.Light, cfg.Display.Theme)

	saved, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, theme.Light, saved.Display.Theme)
	assert.Equal(t, 15, saved.Display.SnoozeMinutes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "one-off-flag", "runtime overrides stay out of the file")
}

func TestPollStatusLabels(t *testing.T) {
	m, h := newModel(t, Deps{})

	h.poller.status = appsync.Status{State: appsync.PollIdle, LastScan: time.Date(2024, 1, 1, 9, 0, 5, 0, time.Local)}
	assert.Equal(t, "checked 09:00:05", m.pollStatus())

	h.poller.status = appsync.Status{State: appsync.PollError}
	assert.Equal(t, "⚠ check failed", m.pollStatus())
}
