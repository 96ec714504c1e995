// Package notify delivers due-reminder notifications to a fixed, ordered
// set of sinks. A failing sink never stops the ones after it.
package notify

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/medreminder/internal/model"
)

// Sink is one notification channel.
type Sink interface {
	Name() string
	Notify(ctx context.Context, r model.Reminder) error
}

// DefaultSinkTimeout bounds a single sink call.
const DefaultSinkTimeout = 20 * time.Second

// Dispatcher fans a due reminder out to its sinks in order.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	log     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// NewDispatcher creates a Dispatcher over sinks. A non-positive timeout
// means DefaultSinkTimeout.
func NewDispatcher(log *zap.SugaredLogger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SinkNames returns the configured sink names in dispatch order.
func (d *Dispatcher) SinkNames() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Dispatch starts delivering r and returns immediately. Sinks run one
// after another on a background goroutine.
func (d *Dispatcher) Dispatch(r model.Reminder) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(r)
	}()
}

// Wait blocks until every in-flight dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits up to timeout for in-flight dispatches, then cancels any
// sink still running. It reports whether everything finished in time.
func (d *Dispatcher) Shutdown(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return true
	case <-time.After(timeout):
		d.cancel()
		<-done
		return false
	}
}

func (d *Dispatcher) deliver(r model.Reminder) {
	for _, s := range d.sinks {
		if d.ctx.Err() != nil {
			return
		}

		start := time.Now()
		if err := d.notifyOne(s, r); err != nil {
			d.log.Warnw("notification sink failed",
				"sink", s.Name(), "reminder", r.ID, "error", err)
			continue
		}
		d.log.Debugw("notification sent",
			"sink", s.Name(), "reminder", r.ID, "elapsed", time.Since(start))
	}
}

// notifyOne runs a single sink with its own deadline, converting a panic
// into an error.
func (d *Dispatcher) notifyOne(s Sink, r model.Reminder) (err error) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sink %s panicked: %v", s.Name(), p)
		}
	}()

	return s.Notify(ctx, r)
}
