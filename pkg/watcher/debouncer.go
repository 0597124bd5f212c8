package watcher

import (
	"context"
	"time"

	"github.com/ritzau/normlap/pkg/logging"
)

// Debouncer batches rapid file system events so one save triggers one re-score
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is emitted once no
// event arrived for quietPeriod, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 4),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending  ChangeEvent
		count    int
		quiet    <-chan time.Time
		deadline <-chan time.Time
	)

	flush := func() {
		quiet, deadline = nil, nil
		if count == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", count, "roles", pending.Roles)

		select {
		case d.output <- pending:
		case <-ctx.Done():
		}
		pending, count = ChangeEvent{}, 0
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			pending = pending.merge(event)
			count++

			quiet = time.After(d.quietPeriod)
			if deadline == nil {
				deadline = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
