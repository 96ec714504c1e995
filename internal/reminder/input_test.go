package reminder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/reminder"
)

func TestValidateFieldChecksOnlyThatField(t *testing.T) {
	in := reminder.Input{Name: "Aspirin"}

	assert.NoError(t, in.ValidateField("Name"))

	err := in.ValidateField("Dosage")
	require.Error(t, err)
	assert.Equal(t, "Please enter the dosage.", reminder.UserMessage(err))

	in.Time = "7:5"
	assert.Equal(t, "Please enter valid time.", reminder.UserMessage(in.ValidateField("Time")))

	in.Time = "07:05"
	assert.NoError(t, in.ValidateField("Time"))
}

func TestValidateFieldIntervalDependsOnRepeat(t *testing.T) {
	in := reminder.Input{Repeat: model.RepeatDaily}
	assert.NoError(t, in.ValidateField("IntervalDays"))

	in.Repeat = model.RepeatCustom
	assert.Error(t, in.ValidateField("IntervalDays"))

	in.IntervalDays = 3
	assert.NoError(t, in.ValidateField("IntervalDays"))
}

func TestParseInterval(t *testing.T) {
	n, err := reminder.ParseInterval(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"", "0", "-1", "two"} {
		_, err := reminder.ParseInterval(bad)
		assert.True(t, reminder.IsValidationError(err), bad)
	}
}

func TestInputFromRoundTrip(t *testing.T) {
	due, err := model.ParseDue("2024-03-04 21:15")
	require.NoError(t, err)

	in := reminder.InputFrom(model.Reminder{Name: "Metformin", Dosage: "500mg", DueAt: due, Repeat: model.RepeatCustom, IntervalDays: 2})
	assert.Equal(t, reminder.Input{Name: "Metformin", Dosage: "500mg", Time: "21:15", Repeat: model.RepeatCustom, IntervalDays: 2}, in)
	assert.NoError(t, in.Validate())
}
