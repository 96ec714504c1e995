package reminder

import (
	"errors"
	"fmt"
)

// ErrDuplicate is returned when another reminder already has the same
// name (case-insensitive) at the same time of day.
var ErrDuplicate = errors.New("reminder with the same name and time already exists")

const duplicateMessage = "A reminder with the same name and time already exists."

// ValidationError reports user input that was rejected before anything
// was written to the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// UserMessage returns the text to show the user for err: the validation
// message, the duplicate message, or err.Error() for anything else.
func UserMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if errors.Is(err, ErrDuplicate) {
		return duplicateMessage
	}
	return err.Error()
}
