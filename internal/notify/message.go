package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nhle/medreminder/internal/model"
)

// Subject is the title used by the tray and email sinks.
const Subject = "Medicine Reminder"

// DefaultVoiceMessage is the spoken text template.
const DefaultVoiceMessage = "Reminder! It's time to take your medicine {name}, dosage {dosage}."

// Body renders the plain-text notification message for r.
func Body(r model.Reminder) string {
	return fmt.Sprintf("Time to take your medicine:\n\nName: %s\nDosage: %s\nTime: %s",
		r.Name, r.Dosage, r.Clock())
}

// expand substitutes {name}, {dosage} and {time} in tmpl.
func expand(tmpl string, r model.Reminder) string {
	return strings.NewReplacer(
		"{name}", r.Name,
		"{dosage}", r.Dosage,
		"{time}", r.Clock(),
	).Replace(tmpl)
}

// runFunc executes an external command to completion.
type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
