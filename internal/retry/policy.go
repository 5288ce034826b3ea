// Package retry applies backoff to operations that fail with retryable
// classified errors, such as publishing run reports.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       config.RetryBackoffMode // fixed|linear|exponential
	Initial    time.Duration           // base delay
	Max        time.Duration           // cap for growth
	MaxRetries int                     // retries after the first failure
}

// DefaultPolicy returns the default policy (linear, 1s initial, 30s cap, 2 retries).
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// FromReporting builds the report publishing policy. Unset or unparsable
// fields keep their defaults; configuration validation has already
// rejected bad values.
func FromReporting(r config.ReportingConfig) Policy {
	p := DefaultPolicy()
	p.MaxRetries = r.PublishRetries
	if r.PublishBackoff != "" {
		p.Mode = r.PublishBackoff
	}
	if d, err := time.ParseDuration(r.PublishInitialDelay); err == nil && d > 0 {
		p.Initial = d
	}
	if d, err := time.ParseDuration(r.PublishMaxDelay); err == nil && d > 0 {
		p.Max = d
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff before retry n (1-based: first retry => 1).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffExponential:
		if n > 32 {
			return p.Max
		}
		d = p.Initial * (1 << (n - 1))
	default:
		d = time.Duration(n) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Do runs op until it succeeds, fails with an error that is not
// retryable, the retries are used up, or ctx is done. Only classified
// errors whose CanRetry reports true are retried.
func Do(ctx context.Context, p Policy, name string, op func(context.Context) error) error {
	err := op(ctx)
	for attempt := 1; err != nil && attempt <= p.MaxRetries && retryable(err); attempt++ {
		delay := p.Delay(attempt)
		slog.Debug("Retrying operation",
			slog.String("operation", name),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			logfields.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		err = op(ctx)
	}
	return err
}

func retryable(err error) bool {
	ce, ok := ferrors.AsClassified(err)
	return ok && ce.CanRetry()
}
