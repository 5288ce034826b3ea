// Package history keeps a record of validation runs in SQLite.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// Run is one recorded validation run.
type Run struct {
	ID            string
	StartedAt     time.Time
	Duration      time.Duration
	Status        string
	Version       string
	Revision      string
	InputsHash    string
	Documents     int
	NavFindings   int
	ProseFindings int
	Error         string
	Manifest      []byte // JSON manifest, may be empty
}

// Store persists and lists runs.
type Store interface {
	// Record adds a run. Recording the same ID twice is an error.
	Record(ctx context.Context, run Run) error

	// Get returns the run with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (Run, error)

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// LastSuccess returns the newest run whose status is "success" or
	// "warning", or ErrNotFound.
	LastSuccess(ctx context.Context) (Run, error)

	// Close closes the store and releases resources.
	Close() error
}
