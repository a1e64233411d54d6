package watcher

import (
	"context"
	"time"

	"github.com/depscope/depscope/pkg/logging"
)

// Debouncer collapses bursts of reload events into one. A rebuild is
// triggered once the input has been quiet for quietPeriod, or after maxWait
// if events keep arriving.
type Debouncer struct {
	input       <-chan ReloadEvent
	output      chan ReloadEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer.
func NewDebouncer(input <-chan ReloadEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ReloadEvent, 4),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing.
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	var (
		pending  *ReloadEvent
		quiet    = time.NewTimer(0)
		deadline = time.NewTimer(0)
	)
	stopTimer(quiet)
	stopTimer(deadline)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing debounced reload", "path", pending.Path)
		d.output <- *pending
		pending = nil
		stopTimer(quiet)
		stopTimer(deadline)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			if pending == nil {
				// First event of a burst starts the hard deadline.
				stopTimer(deadline)
				deadline.Reset(d.maxWait)
			}
			pending = &event
			stopTimer(quiet)
			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// Output returns the channel of debounced events.
func (d *Debouncer) Output() <-chan ReloadEvent {
	return d.output
}
