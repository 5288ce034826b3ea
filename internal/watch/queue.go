package watch

import (
	"context"
	"log/slog"
)

// RunFunc performs one revalidation. reason names what requested it.
type RunFunc func(ctx context.Context, reason string)

// Queue serializes revalidation runs. At most one run is active and at most
// one is pending; further requests while one is pending are dropped.
type Queue struct {
	run     RunFunc
	pending chan string
}

// NewQueue creates a queue that calls run for every accepted request.
func NewQueue(run RunFunc) *Queue {
	return &Queue{run: run, pending: make(chan string, 1)}
}

// Request asks for a run without blocking. It reports whether the request
// was queued.
func (q *Queue) Request(reason string) bool {
	select {
	case q.pending <- reason:
		return true
	default:
		slog.Debug("Revalidation already pending", slog.String("reason", reason))
		return false
	}
}

// Run processes requests until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-q.pending:
			q.run(ctx, reason)
		}
	}
}
