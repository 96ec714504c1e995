// Package sync runs the background poll loop that finds due reminders
// and hands them to the notification dispatcher.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/recurrence"
	"github.com/nhle/medreminder/internal/store"
)

// PollState represents the current state of the poll loop.
type PollState int

const (
	PollIdle PollState = iota
	PollScanning
	PollError
)

func (s PollState) String() string {
	switch s {
	case PollScanning:
		return "scanning"
	case PollError:
		return "error"
	default:
		return "idle"
	}
}

// Status is a snapshot of the poll loop.
type Status struct {
	State    PollState
	Running  bool
	LastScan time.Time
	Error    error

	// Notified counts reminders dispatched since the poller was created.
	Notified int
}

// DefaultInterval is the scan period when none is configured.
const DefaultInterval = 30 * time.Second

// scanTimeout bounds the store work of a single scan.
const scanTimeout = 15 * time.Second

// Dispatcher receives due reminders. Dispatch must not block.
type Dispatcher interface {
	Dispatch(r model.Reminder)
}

// Poller periodically scans the store for due reminders.
type Poller struct {
	store    store.Store
	dispatch Dispatcher
	interval time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time

	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}

	mu      gosync.Mutex
	running bool
	status  Status
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New creates a Poller. A non-positive interval means DefaultInterval.
func New(s store.Store, d Dispatcher, interval time.Duration, log *zap.SugaredLogger, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &Poller{
		store:     s,
		dispatch:  d,
		interval:  interval,
		log:       log,
		now:       time.Now,
		triggerCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the poll goroutine. It scans immediately, then once per
// interval. Calling Start on a running poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.status.Running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.loop(p.stopCh, p.doneCh)
}

// Stop halts the poll goroutine and waits for an in-progress scan to
// finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	done := p.doneCh
	p.running = false
	p.status.Running = false
	p.mu.Unlock()

	<-done
}

// Trigger requests an immediate scan from the running loop.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A scan is already pending.
	}
}

// Status returns the current poll status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	p.scan(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.scan(ctx)
		case <-p.triggerCh:
			p.scan(ctx)
		}
	}
}

func (p *Poller) scan(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	if _, err := p.Poll(ctx); err != nil {
		p.log.Errorw("reminder scan failed", "error", err)
	}
}

// Poll performs one scan: every reminder that is due and not yet
// notified for its current due time is marked notified and dispatched.
// The read is fresh on every call. It returns the number dispatched.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	p.setState(PollScanning, nil)

	reminders, err := p.store.List(ctx)
	if err != nil {
		err = fmt.Errorf("listing reminders: %w", err)
		p.setState(PollError, err)
		return 0, err
	}

	now := p.now()
	count := 0
	for _, r := range reminders {
		if !recurrence.IsDue(r, now) {
			continue
		}

		// Claim this occurrence first. A concurrent snooze or edit has
		// already moved due_at, so the claim fails and the next scan
		// sees the new time.
		claimed, err := p.store.MarkNotified(ctx, r.ID, r.DueAt)
		if err != nil {
			p.log.Warnw("marking reminder notified failed", "reminder", r.ID, "error", err)
			continue
		}
		if !claimed {
			p.log.Debugw("reminder changed during scan, skipping", "reminder", r.ID)
			continue
		}

		r.Notified = true
		p.log.Infow("reminder due", "reminder", r.ID, "name", r.Name, "due_at", model.FormatDue(r.DueAt))
		p.dispatch.Dispatch(r)
		count++
	}

	p.mu.Lock()
	p.status.Notified += count
	p.mu.Unlock()
	p.setState(PollIdle, nil)
	return count, nil
}

// setState updates the poll status.
func (p *Poller) setState(state PollState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == PollIdle && err == nil {
		p.status.LastScan = p.now()
	}
}
