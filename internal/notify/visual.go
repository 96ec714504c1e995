package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/medreminder/internal/model"
)

// VisualSink hands due events to the foreground over a buffered channel.
// It never blocks: when the buffer is full the event is dropped.
type VisualSink struct {
	events chan model.DueEvent
	now    func() time.Time
}

// NewVisualSink creates a VisualSink with the given buffer size.
func NewVisualSink(buffer int) *VisualSink {
	if buffer < 1 {
		buffer = 1
	}
	return &VisualSink{events: make(chan model.DueEvent, buffer), now: time.Now}
}

func (v *VisualSink) Name() string { return "visual" }

// Events is the channel the presentation layer reads from.
func (v *VisualSink) Events() <-chan model.DueEvent {
	return v.events
}

func (v *VisualSink) Notify(_ context.Context, r model.Reminder) error {
	select {
	case v.events <- model.DueEvent{Reminder: r, FiredAt: v.now()}:
		return nil
	default:
		return fmt.Errorf("event buffer full, dropped alert for %s", r.Name)
	}
}
