package reminder

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/medreminder/internal/model"
)

// Input is the user-editable part of a reminder, as entered in the form.
type Input struct {
	Name   string `validate:"required" msg:"Please enter a medicine name."`
	Dosage string `validate:"required" msg:"Please enter the dosage."`

	// Time is the time of day as HH:MM.
	Time string `validate:"required,datetime=15:04" msg:"Please enter valid time."`

	Repeat model.Repeat `validate:"required,oneof=Once Daily Weekly Custom" msg:"Please choose how often the reminder repeats."`

	// IntervalDays only applies when Repeat is Custom.
	IntervalDays int `validate:"required_if=Repeat Custom,gte=0" msg:"Please enter a valid custom interval (positive number)."`
}

// Snooze bounds, in minutes.
const (
	MinSnooze = 1
	MaxSnooze = 1440
)

var (
	validate = validator.New()

	inputMessages = compileMessages(Input{})
)

// compileMessages collects the msg tag of every field of payload.
func compileMessages(payload any) map[string]string {
	messages := make(map[string]string)
	for _, f := range reflect.VisibleFields(reflect.TypeOf(payload)) {
		messages[f.Name] = f.Tag.Get("msg")
	}
	return messages
}

// normalize trims free text and fills the repeat default.
func (in Input) normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Time = strings.TrimSpace(in.Time)
	if in.Repeat == "" {
		in.Repeat = model.RepeatOnce
	}
	if in.Repeat != model.RepeatCustom {
		in.IntervalDays = 0
	}
	return in
}

// Validate checks the input and returns the first problem as a
// *ValidationError, in field order.
func (in Input) Validate() error {
	in = in.normalize()
	return firstError(validate.Struct(in))
}

// ValidateField checks a single struct field (for example "Name") so a
// form can reject a value as soon as it is entered.
func (in Input) ValidateField(field string) error {
	in = in.normalize()
	return firstError(validate.StructPartial(in, field))
}

// firstError converts a validator result into a *ValidationError carrying
// the field's user-facing message.
func firstError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	msg := inputMessages[first.StructField()]
	if msg == "" {
		msg = first.Error()
	}
	return &ValidationError{Field: strings.ToLower(first.StructField()), Message: msg}
}

// clock parses the validated HH:MM into hour and minute.
func (in Input) clock() (int, int, error) {
	t, err := time.Parse(model.ClockLayout, in.Time)
	if err != nil {
		return 0, 0, &ValidationError{Field: "time", Message: inputMessages["Time"]}
	}
	return t.Hour(), t.Minute(), nil
}

// InputFrom returns the form values for an existing reminder.
func InputFrom(r model.Reminder) Input {
	return Input{
		Name:         r.Name,
		Dosage:       r.Dosage,
		Time:         r.Clock(),
		Repeat:       r.Repeat,
		IntervalDays: r.IntervalDays,
	}
}

// ParseInterval parses a custom interval typed by the user.
func ParseInterval(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, &ValidationError{Field: "intervaldays", Message: inputMessages["IntervalDays"]}
	}
	return n, nil
}

// ValidateSnooze checks minutes against the allowed snooze range.
func ValidateSnooze(minutes int) error {
	if minutes < MinSnooze || minutes > MaxSnooze {
		return &ValidationError{Field: "minutes", Message: "Please enter a snooze between 1 and 1440 minutes."}
	}
	return nil
}
