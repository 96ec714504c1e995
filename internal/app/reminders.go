package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/theme"
)

// storeTimeout bounds a single UI-triggered store operation.
const storeTimeout = 5 * time.Second

// refreshInterval re-reads the store so statuses and notified flags
// written by the poller stay current.
const refreshInterval = 30 * time.Second

// remindersLoadedMsg carries a fresh reminder list.
type remindersLoadedMsg struct {
	reminders []model.Reminder
	err       error
}

// actionResultMsg reports the outcome of a reminder operation. id and
// input are set for form submissions so a rejected form can be reopened.
type actionResultMsg struct {
	action string
	done   string
	err    error
	id     string
	input  *reminder.Input
}

// dueEventMsg wraps a due event from the visual sink.
type dueEventMsg struct {
	event model.DueEvent
}

type tickMsg time.Time

type configSavedMsg struct{ err error }

type secretSavedMsg struct {
	key string
	err error
}

func isDuplicate(err error) bool {
	return errors.Is(err, reminder.ErrDuplicate)
}

// waitForEvent returns a tea.Cmd that waits for the next due event. It is
// re-issued after every event. A closed or nil channel stops listening.
func waitForEvent(events <-chan model.DueEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return dueEventMsg{event: ev}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// loadReminders returns a command that lists all reminders.
func (m Model) loadReminders() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		reminders, err := svc.List(ctx)
		return remindersLoadedMsg{reminders: reminders, err: err}
	}
}

// runAction wraps a service call as a command producing actionResultMsg.
func (m Model) runAction(action string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		done, err := fn(ctx)
		return actionResultMsg{action: action, done: done, err: err}
	}
}

func (m Model) createReminder(in reminder.Input) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		r, err := svc.Create(ctx, in)
		if err != nil {
			return actionResultMsg{action: "create", err: err, input: &in}
		}
		return actionResultMsg{action: "create", done: fmt.Sprintf("Added %s at %s.", r.Name, r.Clock())}
	}
}

func (m Model) editReminder(id string, in reminder.Input) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		r, err := svc.Edit(ctx, id, in)
		if err != nil {
			return actionResultMsg{action: "edit", err: err, id: id, input: &in}
		}
		return actionResultMsg{action: "edit", done: fmt.Sprintf("Updated %s.", r.Name)}
	}
}

func (m Model) deleteReminder(r model.Reminder) tea.Cmd {
	svc := m.svc
	return m.runAction("delete", func(ctx context.Context) (string, error) {
		return "Deleted " + r.Name + ".", svc.Delete(ctx, r.ID)
	})
}

func (m Model) markTaken(r model.Reminder) tea.Cmd {
	svc := m.svc
	return m.runAction("take", func(ctx context.Context) (string, error) {
		updated, err := svc.MarkTaken(ctx, r.ID)
		if err != nil {
			return "", err
		}
		if updated.Taken {
			return fmt.Sprintf("Marked %s as taken.", r.Name), nil
		}
		return fmt.Sprintf("Marked %s as taken. Next dose %s.", r.Name, model.FormatDue(updated.DueAt)), nil
	})
}

func (m Model) snoozeReminder(r model.Reminder, minutes int) tea.Cmd {
	svc := m.svc
	return m.runAction("snooze", func(ctx context.Context) (string, error) {
		updated, err := svc.Snooze(ctx, r.ID, minutes)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Snoozed %s until %s.", r.Name, updated.Clock()), nil
	})
}

func (m Model) toggleEnabled(r model.Reminder) tea.Cmd {
	svc := m.svc
	return m.runAction("toggle", func(ctx context.Context) (string, error) {
		updated, err := svc.ToggleEnabled(ctx, r.ID)
		if err != nil {
			return "", err
		}
		if updated.Enabled {
			return "Enabled " + r.Name + ".", nil
		}
		return "Paused " + r.Name + ".", nil
	})
}

// toggleTheme flips the palette and persists the choice.
func (m Model) toggleTheme() tea.Cmd {
	m.cfg.Display.Theme = theme.Toggle(m.cfg.Display.Theme)
	theme.Apply(m.cfg.Display.Theme)

	if m.configPath == "" {
		return nil
	}
	name, path := m.cfg.Display.Theme, m.configPath
	return func() tea.Msg {
		return configSavedMsg{err: model.SaveTheme(path, name)}
	}
}

func (m Model) setSecret(key, value string) tea.Cmd {
	secrets := m.secrets
	return func() tea.Msg {
		if secrets == nil {
			return secretSavedMsg{key: key, err: errors.New("no keyring available")}
		}
		return secretSavedMsg{key: key, err: secrets.Set(key, value)}
	}
}
