package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// Publisher delivers run events.
type Publisher interface {
	Publish(ctx context.Context, event *RunEvent) error
	Close() error
}

// NoopPublisher discards events (default when reporting is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *RunEvent) error { return nil }
func (NoopPublisher) Close() error                             { return nil }

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes run events on a subject and each broken link on
// "<subject>.broken_links".
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		return nil, ferrors.ConfigError("nats subject is required").WithField("reporting.nats_subject").Build()
	}
	nc, err := nats.Connect(url,
		nats.Name("cubedocs"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, ferrors.NetworkError("failed to connect to NATS").WithCause(err).
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS publisher connected", logfields.URL(url), slog.String("subject", subject))
	return newPublisher(nc, subject), nil
}

func newPublisher(c conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject}
}

// BrokenLinksSubject is the subject individual broken links are sent on.
func (p *NATSPublisher) BrokenLinksSubject() string {
	return p.subject + ".broken_links"
}

// Publish sends the run event and its broken links, then flushes.
func (p *NATSPublisher) Publish(ctx context.Context, event *RunEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.InternalError("failed to marshal run event").WithCause(err).Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return p.publishError(err, p.subject)
	}

	for i := range event.BrokenLinks {
		data, err := json.Marshal(&event.BrokenLinks[i])
		if err != nil {
			return ferrors.InternalError("failed to marshal broken link event").WithCause(err).Build()
		}
		if err := p.conn.Publish(p.BrokenLinksSubject(), data); err != nil {
			return p.publishError(err, p.BrokenLinksSubject())
		}
	}

	if err := p.conn.FlushWithContext(ctx); err != nil {
		return p.publishError(err, p.subject)
	}

	slog.Debug("Published run event",
		logfields.RunID(event.RunID),
		slog.String("subject", p.subject),
		logfields.Count(len(event.BrokenLinks)))
	return nil
}

func (p *NATSPublisher) publishError(err error, subject string) error {
	return ferrors.NetworkError(fmt.Sprintf("failed to publish to %s", subject)).WithCause(err).
		Build()
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
