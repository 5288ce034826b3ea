// Package report publishes run results to NATS for downstream consumers
// such as chat notifications or issue creation.
package report

import "time"

// RunEvent summarizes one validation run.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms"`
	Site       string    `json:"site"`
	Version    string    `json:"version,omitempty"`
	Revision   string    `json:"revision,omitempty"`
	Commit     string    `json:"commit,omitempty"`
	InputsHash string    `json:"inputs_hash,omitempty"`
	Documents  int       `json:"documents"`
	Error      string    `json:"error,omitempty"`

	BrokenLinks []BrokenLinkEvent `json:"broken_links,omitempty"`
}

// BrokenLinkEvent is one broken link, also published on its own subject so
// consumers can act per link.
type BrokenLinkEvent struct {
	RunID       string `json:"run_id"`
	Scope       string `json:"scope"`
	Source      string `json:"source"`
	DocID       string `json:"doc_id,omitempty"`
	Destination string `json:"destination"`
	Reason      string `json:"reason"`
	Line        int    `json:"line,omitempty"`
}
