package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	name, args := Parse("  Set-Secret email-password  s3cret ")
	assert.Equal(t, "set-secret", name)
	assert.Equal(t, []string{"email-password", "s3cret"}, args)

	name, args = Parse("   ")
	assert.Empty(t, name)
	assert.Nil(t, args)
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(60)
	m.Focus()
	m.input.SetValue(" reload ")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("reload"), cmd())
	assert.Empty(t, m.input.Value())
}

func TestEmptyOrEscCancels(t *testing.T) {
	m := New(60)
	m.Focus()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())

	m.input.SetValue("qu")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}
